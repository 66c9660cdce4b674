package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlTagPattern      = regexp.MustCompile(`(?i)<(p|div|h[1-6]|ul|ol|li|table|tr|br|article|section|body|html)[\s>/]`)
	documentRootPattern = regexp.MustCompile(`(?i)<(!doctype\s+html|html|body)[\s>]`)
	lineBreakTagPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTagPattern       = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9-]*(\s[^<>]*)?/?>`)
)

const blockSelector = "h1, h2, h3, h4, h5, h6, p, li, table, blockquote, pre, figcaption"

// minBlockShare is the share of visible text that block elements must hold
// for tagged input without a document root to be read as HTML.
const minBlockShare = 0.5

func looksLikeHTML(raw string) bool {
	return htmlTagPattern.MatchString(raw)
}

// prepareMarkup decides how tagged input is read. Full HTML documents are
// flattened; markdown with stray inline tags keeps its lines and loses the tags.
func prepareMarkup(raw string) string {
	doc, err := parseHTML(raw)
	if err != nil {
		return stripTags(raw)
	}
	if documentRootPattern.MatchString(raw) || blockShare(doc) >= minBlockShare {
		return flattenHTML(doc)
	}
	return stripTags(raw)
}

// blockShare is the fraction of the visible text held by outermost block elements.
func blockShare(doc *goquery.Document) float64 {
	total := len(collapse(doc.Text()))
	if total == 0 {
		return 0
	}
	covered := 0
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		covered += len(collapse(s.Text()))
	})
	return float64(covered) / float64(total)
}

// stripTags removes tags from otherwise plain text; <br> becomes a space.
func stripTags(raw string) string {
	out := lineBreakTagPattern.ReplaceAllString(raw, " ")
	return anyTagPattern.ReplaceAllString(out, "")
}

// normalizeHTML flattens an HTML document into the markdown-like text the
// rubrics read.
func normalizeHTML(raw string) (string, error) {
	doc, err := parseHTML(raw)
	if err != nil {
		return "", err
	}
	return flattenHTML(doc), nil
}

func parseHTML(raw string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	return doc, nil
}

// flattenHTML renders headings as "#" lines, list items as bullets or numbered
// lines and table rows as pipe rows with a separator after the first row.
func flattenHTML(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}
		name := goquery.NodeName(s)
		if name != "li" && s.ParentsFiltered("li").Length() > 0 {
			return
		}

		switch name {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(name[1] - '0')
			fmt.Fprintf(&b, "\n%s %s\n\n", strings.Repeat("#", level), collapse(s.Text()))
		case "li":
			prefix := "- "
			if s.ParentsFiltered("ol").Length() > 0 {
				prefix = fmt.Sprintf("%d. ", s.Index()+1)
			}
			b.WriteString(prefix + collapse(s.Text()) + "\n")
		case "table":
			b.WriteString("\n")
			s.Find("tr").Each(func(i int, tr *goquery.Selection) {
				var cells []string
				tr.Find("th, td").Each(func(_ int, c *goquery.Selection) {
					cells = append(cells, collapse(c.Text()))
				})
				if len(cells) == 0 {
					return
				}
				b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
				if i == 0 {
					b.WriteString("|" + strings.Repeat(" --- |", len(cells)) + "\n")
				}
			})
			b.WriteString("\n")
		default:
			if text := collapse(s.Text()); text != "" {
				b.WriteString("\n" + text + "\n\n")
			}
		}
	})

	out := strings.TrimSpace(b.String())
	if out == "" {
		out = collapse(doc.Text())
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
