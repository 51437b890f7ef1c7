package internal

import (
	"testing"
	"time"
)

func newDraft() *ChallengeDraft {
	return &ChallengeDraft{
		UserID:    7,
		Step:      DraftStepName,
		StartedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestChallengeDraftFullWalk(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := newDraft()

	steps := []struct {
		input    string
		wantStep string
	}{
		{"Morning run", DraftStepDescription},
		{"Run 5km before work", DraftStepTarget},
		{"7", DraftStepDeadline},
		{"14", DraftStepPool},
		{"100", DraftStepVisibility},
		{"public", DraftStepDone},
	}

	for _, s := range steps {
		if ok := d.Advance(now, s.input); !ok {
			t.Fatalf("Advance(%q) at step %q rejected valid input", s.input, d.Step)
		}
		if d.Step != s.wantStep {
			t.Fatalf("after %q step = %q, want %q", s.input, d.Step, s.wantStep)
		}
	}

	if !d.Done() {
		t.Fatal("draft not done after last step")
	}
	if d.Name != "Morning run" || d.TargetCount != 7 || d.PrizePool != 100 || !d.IsPublic {
		t.Errorf("draft fields = %+v", d)
	}
	if d.Deadline == nil || !d.Deadline.Equal(now.AddDate(0, 0, 14)) {
		t.Errorf("deadline = %v, want %v", d.Deadline, now.AddDate(0, 0, 14))
	}
}

func TestChallengeDraftZeroDeadline(t *testing.T) {
	now := time.Now()
	d := newDraft()
	d.Step = DraftStepDeadline
	if ok := d.Advance(now, "0"); !ok {
		t.Fatal("0 days must be accepted as no deadline")
	}
	if d.Deadline != nil {
		t.Errorf("deadline = %v, want nil", d.Deadline)
	}
	if d.Step != DraftStepPool {
		t.Errorf("step = %q, want %q", d.Step, DraftStepPool)
	}
}

func TestChallengeDraftRejectsBadInput(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		step  string
		input string
	}{
		{"empty name", DraftStepName, "   "},
		{"non-numeric target", DraftStepTarget, "seven"},
		{"zero target", DraftStepTarget, "0"},
		{"negative target", DraftStepTarget, "-3"},
		{"negative deadline", DraftStepDeadline, "-1"},
		{"non-numeric pool", DraftStepPool, "lots"},
		{"negative pool", DraftStepPool, "-100"},
		{"unknown visibility", DraftStepVisibility, "friends-only"},
		{"advance past done", DraftStepDone, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDraft()
			d.Step = tt.step
			before := *d
			if ok := d.Advance(now, tt.input); ok {
				t.Fatalf("Advance(%q) at step %q accepted bad input", tt.input, tt.step)
			}
			if *d != before {
				t.Errorf("draft mutated on rejected input: %+v", d)
			}
		})
	}
}

func TestChallengeDraftVisibilityCaseInsensitive(t *testing.T) {
	now := time.Now()
	for _, input := range []string{"Public", "PUBLIC", "public"} {
		d := newDraft()
		d.Step = DraftStepVisibility
		if ok := d.Advance(now, input); !ok {
			t.Errorf("Advance(%q) rejected", input)
		}
		if !d.IsPublic {
			t.Errorf("Advance(%q) did not set public", input)
		}
	}
	d := newDraft()
	d.Step = DraftStepVisibility
	if ok := d.Advance(now, "private"); !ok || d.IsPublic {
		t.Error("private must advance and stay non-public")
	}
}

func TestChallengeDraftPrompt(t *testing.T) {
	d := newDraft()
	for d.Step != DraftStepDone {
		if d.Prompt() == "" {
			t.Fatalf("empty prompt at step %q", d.Step)
		}
		switch d.Step {
		case DraftStepName:
			d.Step = DraftStepDescription
		case DraftStepDescription:
			d.Step = DraftStepTarget
		case DraftStepTarget:
			d.Step = DraftStepDeadline
		case DraftStepDeadline:
			d.Step = DraftStepPool
		case DraftStepPool:
			d.Step = DraftStepVisibility
		case DraftStepVisibility:
			d.Step = DraftStepDone
		}
	}
	if d.Prompt() != "" {
		t.Error("done step must have no prompt")
	}
}
