package scoring

import (
	"regexp"
	"strings"
)

var (
	headingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	bulletPattern    = regexp.MustCompile(`^[-*•]\s+\S`)
	numberedPattern  = regexp.MustCompile(`^\d+[.)]\s+\S`)
	tableRowPattern  = regexp.MustCompile(`^\|.*\|$`)
	separatorPattern = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
	paragraphBreak   = regexp.MustCompile(`\n\s*\n`)
	sentenceBreak    = regexp.MustCompile(`[.!?]+\s+`)
)

// Heading is a markdown heading line.
type Heading struct {
	Level int
	Text  string
}

// Document is the pre-computed view of a piece of content that every rubric reads.
type Document struct {
	Text  string
	Lower string
	// Lines are the trimmed non-empty lines.
	Lines []string
	// Paragraphs are blank-line separated blocks with heading lines removed.
	Paragraphs []string
	// Sentences come from non-heading, non-table lines.
	Sentences []string
	Words     int
	Headings  []Heading
	Bullets   int
	Numbered  int
	// TableRows are pipe rows excluding separator rows.
	TableRows    []string
	HasSeparator bool
}

// Analyze normalises raw content and computes its structural view.
func Analyze(raw string) *Document {
	text := raw
	if looksLikeHTML(raw) {
		text = prepareMarkup(raw)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	doc := &Document{Text: text, Lower: strings.ToLower(text)}
	if text == "" {
		return doc
	}

	rawLines := strings.Split(text, "\n")
	inTable := pipeTableLines(rawLines)
	for i, line := range rawLines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Lines = append(doc.Lines, line)

		switch {
		case headingPattern.MatchString(line):
			m := headingPattern.FindStringSubmatch(line)
			doc.Headings = append(doc.Headings, Heading{Level: len(m[1]), Text: m[2]})
			continue
		case separatorPattern.MatchString(line) && strings.Contains(line, "|"):
			doc.HasSeparator = true
			continue
		case inTable[i] || (tableRowPattern.MatchString(line) && strings.Count(line, "|") >= 2):
			doc.TableRows = append(doc.TableRows, line)
			continue
		case bulletPattern.MatchString(line):
			doc.Bullets++
		case numberedPattern.MatchString(line):
			doc.Numbered++
		}

		for _, s := range sentenceBreak.Split(line, -1) {
			if s = strings.TrimSpace(s); s != "" {
				doc.Sentences = append(doc.Sentences, s)
			}
		}
	}

	for _, block := range paragraphBreak.Split(text, -1) {
		var kept []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || headingPattern.MatchString(line) {
				continue
			}
			kept = append(kept, line)
		}
		if len(kept) > 0 {
			doc.Paragraphs = append(doc.Paragraphs, strings.Join(kept, "\n"))
		}
	}

	doc.Words = len(strings.Fields(text))
	return doc
}

// pipeTableLines marks runs of adjacent pipe lines that contain a separator
// row. Rows in such a run count as table rows even without outer pipes.
func pipeTableLines(lines []string) []bool {
	marked := make([]bool, len(lines))
	start, hasSeparator := -1, false
	flush := func(end int) {
		if start >= 0 && hasSeparator {
			for i := start; i < end; i++ {
				marked[i] = true
			}
		}
		start, hasSeparator = -1, false
	}
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "|") || headingPattern.MatchString(line) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
		if separatorPattern.MatchString(line) {
			hasSeparator = true
		}
	}
	flush(len(lines))
	return marked
}

// FirstParagraph returns the first non-heading block, or "".
func (d *Document) FirstParagraph() string {
	if len(d.Paragraphs) == 0 {
		return ""
	}
	return d.Paragraphs[0]
}

// FirstSentence returns the first body sentence, or "".
func (d *Document) FirstSentence() string {
	if len(d.Sentences) == 0 {
		return ""
	}
	return d.Sentences[0]
}

// Opening returns the lowercased first n words of the text.
func (d *Document) Opening(n int) string {
	words := strings.Fields(d.Lower)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// AvgSentenceWords is the mean sentence length in words.
func (d *Document) AvgSentenceWords() float64 {
	if len(d.Sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range d.Sentences {
		total += len(strings.Fields(s))
	}
	return float64(total) / float64(len(d.Sentences))
}

// LongestParagraphWords is the word count of the longest paragraph.
func (d *Document) LongestParagraphWords() int {
	longest := 0
	for _, p := range d.Paragraphs {
		if n := len(strings.Fields(p)); n > longest {
			longest = n
		}
	}
	return longest
}

// HeadingContains reports whether any heading contains one of the lowercase keywords.
func (d *Document) HeadingContains(keywords ...string) bool {
	for _, h := range d.Headings {
		lower := strings.ToLower(h.Text)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}

// ContainsAny reports whether the text contains one of the lowercase phrases.
func (d *Document) ContainsAny(phrases ...string) bool {
	return containsAny(d.Lower, phrases...)
}

// Count returns the number of non-overlapping matches of re in the text.
func (d *Document) Count(re *regexp.Regexp) int {
	return len(re.FindAllStringIndex(d.Text, -1))
}

func containsAny(lower string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// splitCells returns the trimmed cells of a pipe row.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}
