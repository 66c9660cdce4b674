package scoring

import (
	"regexp"
	"strings"
)

var tableValuePattern = regexp.MustCompile(`(?i)(\d|✓|✗|✔|✘|\byes\b|\bno\b|\bn/a\b)`)

type comparisonScorer struct{}

func (comparisonScorer) ContentType() ContentType { return ContentComparisonTable }
func (comparisonScorer) MaxScore() int            { return 100 }

func (comparisonScorer) Dimensions(doc *Document) []NamedDimension {
	return []NamedDimension{
		tableStructure(doc, 30),
		columnConsistency(doc, 15),
		criteriaCoverage(doc, 15),
		verdictSummary(doc, 15),
		tableSpecificity(doc, 15),
		methodologyNote(doc, 10),
	}
}

// tableStructure needs three or more pipe rows and a header separator for full marks.
func tableStructure(doc *Document, outOf int) NamedDimension {
	rows := len(doc.TableRows)
	score := 0
	switch {
	case rows >= 3 && doc.HasSeparator:
		score = outOf
	case rows >= 3:
		score = outOf / 2
	case rows >= 1:
		score = outOf / 4
	}
	return dimension("tableStructure", score, outOf,
		"A well-formed table with a header row.",
		"Present the comparison as a table with a header row, a separator and one row per option or criterion.")
}

func columnConsistency(doc *Document, outOf int) NamedDimension {
	score := 0
	if len(doc.TableRows) >= 2 {
		counts := map[int]int{}
		best := 0
		for _, row := range doc.TableRows {
			n := len(splitCells(row))
			counts[n]++
			if counts[n] > best {
				best = counts[n]
			}
		}
		switch {
		case best == len(doc.TableRows):
			score = outOf
		case best*5 >= len(doc.TableRows)*4:
			score = outOf / 2
		}
	}
	return dimension("columnConsistency", score, outOf,
		"Every row has the same columns.",
		"Give every row the same number of cells so the table parses cleanly.")
}

func criteriaCoverage(doc *Document, outOf int) NamedDimension {
	dataRows := len(doc.TableRows) - 1
	return dimension("criteriaCoverage", tiered(dataRows, tier{5, outOf}, tier{3, outOf * 2 / 3}, tier{1, outOf / 3}), outOf,
		"Compares a broad set of criteria.",
		"Compare at least five criteria buyers care about (price, features, support ...).")
}

func verdictSummary(doc *Document, outOf int) NamedDimension {
	ok := doc.ContainsAny("verdict", "bottom line", "winner", "best for", "our pick", "we recommend", "overall,", "choose ")
	return dimension("verdictSummary", boolScore(ok, outOf), outOf,
		"States who should pick which option.",
		"Add a verdict summarising which option is best for which situation.")
}

func tableSpecificity(doc *Document, outOf int) NamedDimension {
	n := 0
	for _, row := range doc.TableRows {
		for _, cell := range splitCells(row) {
			if tableValuePattern.MatchString(cell) {
				n++
			}
		}
	}
	return dimension("dataSpecificity", tiered(n, tier{6, outOf}, tier{3, outOf * 2 / 3}, tier{1, outOf / 3}), outOf,
		"Cells hold concrete values.",
		"Fill cells with specific values (prices, limits, yes/no) rather than adjectives.")
}

func methodologyNote(doc *Document, outOf int) NamedDimension {
	ok := doc.ContainsAny("methodology", "how we tested", "how we compared", "we compared", "we tested", "based on", "as of ", "sources:")
	if !ok {
		ok = strings.Contains(doc.Lower, "pricing") && strings.Contains(doc.Lower, "updated")
	}
	return dimension("methodologyNote", boolScore(ok, outOf), outOf,
		"Explains how the comparison was made.",
		"Note how and when the comparison was made so it can be trusted and dated.")
}
