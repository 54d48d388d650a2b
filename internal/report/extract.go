package report

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rcaccelerator/server/pkg/models"
)

// tracebackMarker opens every Python traceback capture in a Tempest report.
const tracebackMarker = "Traceback (most recent call last):"

// logCloseMarker terminates a structured subunit log attachment; anything
// after it inside a traceback block is framing, not stack text.
const logCloseMarker = "}}}"

// unknownTestName is substituted when no heuristic recognizes a test name.
const unknownTestName = "Unknown Test Name"

// Extraction patterns compiled once at package init. Failed-test rows carry
// ids of the form ft<run>.<seq>. The test name is pulled from the text
// before the first traceback with two layered heuristics, then stripped of
// parameterization tags and parenthesized scenario suffixes.
var (
	reFailedRowID  = regexp.MustCompile(`^ft\d+\.\d+`)
	reNamePrimary  = regexp.MustCompile(`ft\d+\.\d+:\s*(.*?)\)?testtools`)
	reNameFallback = regexp.MustCompile(`ft\d+\.\d+:\s*(.*?)$`)
	reBracketTag   = regexp.MustCompile(`\[.*?\]`)
	reParenSuffix  = regexp.MustCompile(`\(.*?\)`)
)

// ExtractFailures pulls one FailureRecord per failed-test row out of a
// report document. It never fails: malformed or unrecognizable input just
// yields fewer records. Rows without a traceback, and rows whose traceback
// marker has no text after it, are skipped entirely.
func ExtractFailures(doc Document) []models.FailureRecord {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return nil
	}

	var records []models.FailureRecord
	root.Find("tr[id]").Each(func(_ int, row *goquery.Selection) {
		id, _ := row.Attr("id")
		if !reFailedRowID.MatchString(id) {
			return
		}

		text := strings.TrimSpace(row.Text())
		idx := strings.Index(text, tracebackMarker)
		if idx == -1 {
			return
		}

		traceback := lastTraceback(text[idx:])
		if traceback == "" {
			return
		}

		records = append(records, models.FailureRecord{
			TestName:  extractTestName(strings.TrimSpace(text[:idx])),
			Traceback: traceback,
		})
	})
	return records
}

// extractTestName applies the layered name heuristics to the text that
// precedes the first traceback marker. The tag and suffix stripping is
// unconditional, placeholder included.
func extractTestName(context string) string {
	name := unknownTestName
	if m := reNamePrimary.FindStringSubmatch(context); m != nil {
		name = strings.TrimSpace(m[1])
		name = strings.TrimSpace(strings.TrimSuffix(name, "("))
	} else if m := reNameFallback.FindStringSubmatch(context); m != nil {
		name = strings.TrimSpace(m[1])
	}

	name = reBracketTag.ReplaceAllString(name, "")
	name = reParenSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// lastTraceback returns the final traceback block in text, which starts at
// a traceback marker. A retried test stacks several tracebacks in one row;
// only the last capture reflects the state the test actually failed in.
// Returns "" when the marker has no text after it.
func lastTraceback(text string) string {
	parts := strings.Split(text, tracebackMarker)
	// text begins with the marker, so parts[0] is empty and every later
	// element is the body of one block.
	body := parts[len(parts)-1]
	if strings.TrimSpace(body) == "" {
		return ""
	}

	block := strings.TrimSpace(tracebackMarker + body)
	if i := strings.Index(block, logCloseMarker); i != -1 {
		block = strings.TrimSpace(block[:i])
	}
	return block
}
