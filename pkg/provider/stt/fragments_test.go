package stt_test

import (
	"errors"
	"math"
	"testing"

	"github.com/librettoapp/libretto/pkg/provider/stt"
)

func TestParseFragments_PlainArray(t *testing.T) {
	t.Parallel()

	raw := `[{"start": 0.0, "end": 2.5, "text": "Hello"}, {"start": 2.5, "end": 4.0, "text": "world."}]`
	frags, err := stt.ParseFragments(raw)
	if err != nil {
		t.Fatalf("ParseFragments: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if frags[0].Text != "Hello" || frags[1].Text != "world." {
		t.Errorf("texts = %q, %q", frags[0].Text, frags[1].Text)
	}
	if frags[1].Start != 2.5 || frags[1].End != 4.0 {
		t.Errorf("second fragment = [%f, %f], want [2.5, 4.0]", frags[1].Start, frags[1].End)
	}
}

func TestParseFragments_StripsProseAndFences(t *testing.T) {
	t.Parallel()

	raw := "Here is the transcription you asked for:\n```json\n" +
		`[{"start": 0, "end": 1, "text": "Hi."}]` +
		"\n```\nLet me know if you need anything else."
	frags, err := stt.ParseFragments(raw)
	if err != nil {
		t.Fatalf("ParseFragments: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "Hi." {
		t.Fatalf("got %+v, want single fragment %q", frags, "Hi.")
	}
}

func TestParseFragments_ClockStamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		raw   string
		start float64
		end   float64
	}{
		{
			"minutes and seconds",
			`[{"start": "01:30", "end": "01:45.5", "text": "x"}]`,
			90, 105.5,
		},
		{
			"hours included",
			`[{"start": "1:02:03", "end": "1:02:04", "text": "x"}]`,
			3723, 3724,
		},
		{
			"numeric strings",
			`[{"start": "12.25", "end": "13", "text": "x"}]`,
			12.25, 13,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			frags, err := stt.ParseFragments(tc.raw)
			if err != nil {
				t.Fatalf("ParseFragments: %v", err)
			}
			if len(frags) != 1 {
				t.Fatalf("got %d fragments, want 1", len(frags))
			}
			if math.Abs(frags[0].Start-tc.start) > 1e-9 || math.Abs(frags[0].End-tc.end) > 1e-9 {
				t.Errorf("span = [%f, %f], want [%f, %f]", frags[0].Start, frags[0].End, tc.start, tc.end)
			}
		})
	}
}

func TestParseFragments_DropsEmptyText(t *testing.T) {
	t.Parallel()

	raw := `[{"start": 0, "end": 1, "text": "  "}, {"start": 1, "end": 2, "text": "kept"}]`
	frags, err := stt.ParseFragments(raw)
	if err != nil {
		t.Fatalf("ParseFragments: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "kept" {
		t.Fatalf("got %+v, want only the non-blank fragment", frags)
	}
}

func TestParseFragments_SortsByStart(t *testing.T) {
	t.Parallel()

	raw := `[{"start": 5, "end": 6, "text": "b"}, {"start": 1, "end": 2, "text": "a"}]`
	frags, err := stt.ParseFragments(raw)
	if err != nil {
		t.Fatalf("ParseFragments: %v", err)
	}
	if frags[0].Text != "a" || frags[1].Text != "b" {
		t.Errorf("order = %q, %q, want a then b", frags[0].Text, frags[1].Text)
	}
}

func TestParseFragments_Unparsable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"no array at all", "I could not transcribe this audio."},
		{"broken json", `[{"start": 0, "end": }`},
		{"garbage timestamp", `[{"start": "abc", "end": 1, "text": "x"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := stt.ParseFragments(tc.raw); !errors.Is(err, stt.ErrUnparsable) {
				t.Errorf("ParseFragments(%s) err = %v, want ErrUnparsable", tc.name, err)
			}
		})
	}
}

func TestFragment_Valid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		frag stt.Fragment
		want bool
	}{
		{"well formed", stt.Fragment{Start: 0, End: 1, Text: "x"}, true},
		{"zero width", stt.Fragment{Start: 1, End: 1, Text: "x"}, true},
		{"negative start", stt.Fragment{Start: -1, End: 1, Text: "x"}, false},
		{"inverted", stt.Fragment{Start: 2, End: 1, Text: "x"}, false},
		{"empty text", stt.Fragment{Start: 0, End: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.frag.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
