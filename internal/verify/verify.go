// Package verify scores how faithfully generated narration matches its
// chapter script.
//
// The narration is transcribed back to text and compared against the
// original script after both sides are normalized. Scores here are
// advisory: the operator decides whether a chapter needs regeneration, and
// nothing in the editing pipeline gates on them.
package verify

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/pmezard/go-difflib/difflib"
)

// SpanKind classifies one aligned span of the comparison.
type SpanKind string

const (
	SpanEqual   SpanKind = "equal"
	SpanReplace SpanKind = "replace"
	SpanDelete  SpanKind = "delete"
	SpanInsert  SpanKind = "insert"
)

// Span is one aligned run of words between script and transcription.
type Span struct {
	// Kind says how the two sides relate over this run.
	Kind SpanKind

	// Original is the script side of the run, empty for insertions.
	Original string

	// Transcribed is the narration side of the run, empty for deletions.
	Transcribed string

	// Confidence is the Jaro-Winkler similarity of the two sides for
	// replace spans: a high value suggests a near-homophone rather than a
	// genuine misread. Equal spans carry 1, pure inserts and deletes 0.
	Confidence float64
}

// Report is the outcome of comparing a script against its narration.
type Report struct {
	// Similarity is the overall match ratio on a 0-100 scale.
	Similarity float64

	// Spans is the word-level alignment in script order.
	Spans []Span
}

// NormalizeStrict reduces text to bare comparison form: every rune that is
// not a letter or digit becomes a space, and whitespace runs collapse to
// single spaces. Letter classification is Unicode-aware, so Hangul and
// Latin scripts survive equally.
func NormalizeStrict(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// Compare aligns the normalized script against the normalized transcription
// word by word and returns the similarity ratio plus the aligned spans.
func Compare(original, transcribed string) *Report {
	origWords := strings.Fields(NormalizeStrict(original))
	transWords := strings.Fields(NormalizeStrict(transcribed))

	matcher := difflib.NewMatcher(origWords, transWords)
	report := &Report{
		Similarity: matcher.Ratio() * 100,
	}

	for _, op := range matcher.GetOpCodes() {
		span := Span{
			Original:    strings.Join(origWords[op.I1:op.I2], " "),
			Transcribed: strings.Join(transWords[op.J1:op.J2], " "),
		}
		switch op.Tag {
		case 'e':
			span.Kind = SpanEqual
			span.Confidence = 1
		case 'r':
			span.Kind = SpanReplace
			span.Confidence = matchr.JaroWinkler(span.Original, span.Transcribed, false)
		case 'd':
			span.Kind = SpanDelete
		case 'i':
			span.Kind = SpanInsert
		}
		report.Spans = append(report.Spans, span)
	}
	return report
}

// Mismatches returns only the spans where the narration deviates from the
// script, preserving order.
func (r *Report) Mismatches() []Span {
	var out []Span
	for _, s := range r.Spans {
		if s.Kind != SpanEqual {
			out = append(out, s)
		}
	}
	return out
}
