// Package feedback recognises ratings typed inline in chat messages and
// merges them with ratings reported by the backend.
package feedback

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/set-night/chatfeedback/internal/domain"
)

// Result is a rating found in free text. Review is always the whole input.
type Result struct {
	Review string
	Rating domain.Rating
	// Template is the name of the pattern that matched.
	Template string
}

type template struct {
	name string
	re   *regexp.Regexp
}

// gap allows a few words between a verb and its number, without crossing
// into another sentence.
const gap = `[^\d.!?]{0,30}?`

// num captures a signed integer or decimal, so that "-3" and "4.5" are
// rejected instead of being read as 3 or 4.
const num = `(-?\d+(?:\.\d+)?)`

// lead starts a number-first template. It replaces \b so the sign and the
// integer part of a decimal stay in the capture.
const lead = `(?:^|[^\w.-])`

// templates are tried in order; the first one that matches with a valid
// rating wins.
var templates = []template{
	{"rate", regexp.MustCompile(`(?i)\b(?:rate|rating|score)\b` + gap + num)},
	{"slash_five", regexp.MustCompile(`(?i)` + lead + num + `\s*/\s*5\b`)},
	{"out_of_five", regexp.MustCompile(`(?i)` + lead + num + `\s+out\s+of\s+5\b`)},
	{"stars", regexp.MustCompile(`(?i)` + lead + num + `[\s-]*stars?\b`)},
	{"thumbs_up", regexp.MustCompile(`(?i)\bthumbs?\s+up\s+` + num)},
	{"points", regexp.MustCompile(`(?i)` + lead + num + `[\s-]*points?\b`)},
	{"would_give", regexp.MustCompile(`(?i)\bwould\s+(?:give|rate)\b` + gap + num)},
	{"i_give", regexp.MustCompile(`(?i)\bi(?:['’]d|\s+would)?\s+give\b` + gap + num)},
	{"rated", regexp.MustCompile(`(?i)\brated\b` + gap + num)},
	{"for_the_chat", regexp.MustCompile(`(?i)` + lead + num + `\s+for\s+(?:this|the)\s+(?:chat|conversation|session)\b`)},
	{"give_a", regexp.MustCompile(`(?i)\bgive\b[^\d!?]{0,40}?\ban?\s+` + num + `\s*[.!]*\s*$`)},
}

// Extract returns the rating of the first template that matches text with a
// number in 1-5. A template whose number is out of range is skipped.
//
// The table is a heuristic: "the hotel has 5 stars" is read as a rating.
func Extract(text string) (Result, bool) {
	for _, t := range templates {
		m := t.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		rating, ok := parseRating(m[1])
		if !ok {
			continue
		}
		return Result{Review: text, Rating: rating, Template: t.name}, true
	}
	return Result{}, false
}

// ExtractReview treats the whole text as a review and attaches a rating
// when one can be extracted.
func ExtractReview(text string) Result {
	if r, ok := Extract(text); ok {
		return r
	}
	return Result{Review: text, Rating: domain.NoRating}
}

// parseRating accepts integers and integral decimals such as "5.0".
func parseRating(s string) (domain.Rating, bool) {
	var (
		r   domain.Rating
		err error
	)
	if strings.Contains(s, ".") {
		var f float64
		if f, err = strconv.ParseFloat(s, 64); err == nil {
			r, err = domain.RatingFromNumber(f)
		}
	} else {
		var n int
		if n, err = strconv.Atoi(s); err == nil {
			r, err = domain.NewRating(n)
		}
	}
	if err != nil {
		return domain.NoRating, false
	}
	return r, true
}
