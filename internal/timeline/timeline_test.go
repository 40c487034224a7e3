package timeline_test

import (
	"errors"
	"math"
	"testing"

	"github.com/librettoapp/libretto/internal/timeline"
)

func baseTimeline() timeline.Timeline {
	return timeline.Timeline{
		{Start: 0, End: 5, Text: "A"},
		{Start: 5, End: 10, Text: "B"},
		{Start: 10, End: 15, Text: "C"},
	}
}

func segmentsEqual(t *testing.T, got, want timeline.Timeline) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if math.Abs(got[i].Start-want[i].Start) > 1e-9 ||
			math.Abs(got[i].End-want[i].End) > 1e-9 ||
			got[i].Text != want[i].Text {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestApplyDeletion_StraddleAndShift(t *testing.T) {
	t.Parallel()

	got, err := timeline.ApplyDeletion(baseTimeline(), 6, 8)
	if err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	segmentsEqual(t, got, timeline.Timeline{
		{Start: 0, End: 5, Text: "A"},
		{Start: 5, End: 8, Text: "B"},
		{Start: 8, End: 13, Text: "C"},
	})
}

func TestApplyDeletion_FloorsAtZero(t *testing.T) {
	t.Parallel()

	tl := timeline.Timeline{{Start: 0.5, End: 2, Text: "A"}}
	got, err := timeline.ApplyDeletion(tl, 0, 0.5)
	if err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	segmentsEqual(t, got, timeline.Timeline{{Start: 0, End: 1.5, Text: "A"}})
}

func TestApplyDeletion_StraddleCannotInvert(t *testing.T) {
	t.Parallel()

	// The cut swallows everything after the segment's start.
	tl := timeline.Timeline{{Start: 2, End: 4, Text: "A"}}
	got, err := timeline.ApplyDeletion(tl, 2.5, 10)
	if err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	if got[0].End < got[0].Start {
		t.Errorf("inverted segment %+v", got[0])
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyDeletion_EmptyRangeIsNoOp(t *testing.T) {
	t.Parallel()

	tl := baseTimeline()
	got, err := timeline.ApplyDeletion(tl, 3, 3)
	if !errors.Is(err, timeline.ErrEmptyRange) {
		t.Fatalf("err = %v, want ErrEmptyRange", err)
	}
	segmentsEqual(t, got, tl)
}

func TestApplyDeletion_EpsilonTreatsBoundaryAsAfter(t *testing.T) {
	t.Parallel()

	// Segment starts 0.03s before the cut's end: inside the 0.05 default
	// tolerance, so it counts as fully after the cut and shifts whole.
	tl := timeline.Timeline{{Start: 7.97, End: 10, Text: "A"}}
	got, err := timeline.ApplyDeletion(tl, 6, 8)
	if err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	segmentsEqual(t, got, timeline.Timeline{{Start: 5.97, End: 8, Text: "A"}})
}

func TestApplyDeletion_CustomEpsilon(t *testing.T) {
	t.Parallel()

	// With a zero tolerance the same segment straddles instead of shifting.
	tl := timeline.Timeline{{Start: 7.97, End: 10, Text: "A"}}
	got, err := timeline.ApplyDeletion(tl, 6, 8, timeline.WithDeletionEpsilon(0))
	if err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	segmentsEqual(t, got, timeline.Timeline{{Start: 7.97, End: 8, Text: "A"}})
}

func TestApplyDeletion_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	tl := baseTimeline()
	if _, err := timeline.ApplyDeletion(tl, 6, 8); err != nil {
		t.Fatalf("ApplyDeletion: %v", err)
	}
	segmentsEqual(t, tl, baseTimeline())
}

func TestApplyPatch_GrowsAndShifts(t *testing.T) {
	t.Parallel()

	got := timeline.ApplyPatch(baseTimeline(), 5, 10, 7)
	segmentsEqual(t, got, timeline.Timeline{
		{Start: 0, End: 5, Text: "A"},
		{Start: 5, End: 12, Text: "B"},
		{Start: 12, End: 17, Text: "C"},
	})
}

func TestApplyPatch_ShrinksAndPullsEarlier(t *testing.T) {
	t.Parallel()

	got := timeline.ApplyPatch(baseTimeline(), 5, 10, 3)
	segmentsEqual(t, got, timeline.Timeline{
		{Start: 0, End: 5, Text: "A"},
		{Start: 5, End: 8, Text: "B"},
		{Start: 8, End: 13, Text: "C"},
	})
}

func TestApplyPatch_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	tl := baseTimeline()
	timeline.ApplyPatch(tl, 5, 10, 7)
	segmentsEqual(t, tl, baseTimeline())
}

func TestTimeline_Validate(t *testing.T) {
	t.Parallel()

	if err := baseTimeline().Validate(); err != nil {
		t.Errorf("valid timeline rejected: %v", err)
	}

	bad := timeline.Timeline{
		{Start: -1, End: 2, Text: "A"},
		{Start: 1, End: 0.5, Text: "B"},
	}
	if err := bad.Validate(); err == nil {
		t.Error("Validate accepted a broken timeline")
	}
}

func TestTimeline_At(t *testing.T) {
	t.Parallel()

	tl := baseTimeline()
	if i, ok := tl.At(7.2); !ok || i != 1 {
		t.Errorf("At(7.2) = %d, %v, want 1, true", i, ok)
	}
	if _, ok := tl.At(15); ok {
		t.Error("At(15) reported a hit past the last segment")
	}
	if _, ok := tl.At(-1); ok {
		t.Error("At(-1) reported a hit before the first segment")
	}
}
