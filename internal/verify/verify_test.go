package verify_test

import (
	"testing"

	"github.com/librettoapp/libretto/internal/verify"
)

func TestNormalizeStrict(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"punctuation stripped", "Hello, world! (Chapter 1)", "Hello world Chapter 1"},
		{"whitespace collapsed", "a\t\tb\n\nc   d", "a b c d"},
		{"hangul preserved", "안녕하세요. 1장입니다!", "안녕하세요 1장입니다"},
		{"empty", "?!.,;", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := verify.NormalizeStrict(tc.in); got != tc.want {
				t.Errorf("NormalizeStrict(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCompare_Identical(t *testing.T) {
	t.Parallel()

	report := verify.Compare("The rain stopped at dawn.", "the rain stopped at dawn")
	// Case differs, so two word tokens mismatch but the ratio stays high.
	if report.Similarity < 50 {
		t.Errorf("similarity = %f, want high", report.Similarity)
	}

	exact := verify.Compare("The rain stopped.", "The rain stopped.")
	if exact.Similarity != 100 {
		t.Errorf("similarity of identical text = %f, want 100", exact.Similarity)
	}
	if len(exact.Mismatches()) != 0 {
		t.Errorf("identical text produced mismatches: %+v", exact.Mismatches())
	}
}

func TestCompare_ClassifiesSpans(t *testing.T) {
	t.Parallel()

	report := verify.Compare(
		"the quick brown fox jumps over the fence",
		"the quick braun fox leaped over the fence",
	)

	var kinds []verify.SpanKind
	for _, s := range report.Spans {
		kinds = append(kinds, s.Kind)
	}

	var replaces int
	for _, s := range report.Mismatches() {
		if s.Kind != verify.SpanReplace {
			t.Errorf("unexpected span kind %q in %v", s.Kind, kinds)
		}
		replaces++
	}
	if replaces == 0 {
		t.Fatalf("no replace spans found in %v", kinds)
	}
	if report.Similarity >= 100 || report.Similarity <= 0 {
		t.Errorf("similarity = %f, want strictly between 0 and 100", report.Similarity)
	}
}

func TestCompare_ReplaceConfidenceFlagsNearHomophones(t *testing.T) {
	t.Parallel()

	report := verify.Compare("the brown fox", "the braun fox")

	var replace *verify.Span
	for i, s := range report.Spans {
		if s.Kind == verify.SpanReplace {
			replace = &report.Spans[i]
			break
		}
	}
	if replace == nil {
		t.Fatal("no replace span found")
	}
	// "brown" vs "braun" share most characters; Jaro-Winkler should rate
	// them clearly above a random word pair.
	if replace.Confidence < 0.6 {
		t.Errorf("confidence = %f, want >= 0.6 for a near-homophone", replace.Confidence)
	}
}

func TestCompare_DeleteAndInsert(t *testing.T) {
	t.Parallel()

	report := verify.Compare("one two three", "one three four")

	var sawDelete, sawInsert bool
	for _, s := range report.Mismatches() {
		switch s.Kind {
		case verify.SpanDelete:
			sawDelete = true
			if s.Transcribed != "" {
				t.Errorf("delete span carries transcription %q", s.Transcribed)
			}
		case verify.SpanInsert:
			sawInsert = true
			if s.Original != "" {
				t.Errorf("insert span carries original %q", s.Original)
			}
		}
	}
	if !sawDelete || !sawInsert {
		t.Errorf("expected both delete and insert spans, got %+v", report.Mismatches())
	}
}
