package internal

import (
	"strconv"
	"strings"
	"time"
)

// Draft builder steps, in order.
const (
	DraftStepName        = "name"
	DraftStepDescription = "description"
	DraftStepTarget      = "target"
	DraftStepDeadline    = "deadline"
	DraftStepPool        = "pool"
	DraftStepVisibility  = "visibility"
	DraftStepDone        = "done"
)

// ChallengeDraft is the multi-step challenge creation session. One draft per
// user lives in redis under a TTL, so an abandoned draft expires instead of
// leaking across requests or processes.
type ChallengeDraft struct {
	UserID      int64      `json:"user_id"`
	Step        string     `json:"step"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TargetCount int        `json:"target_count"`
	Deadline    *time.Time `json:"deadline"`
	PrizePool   int        `json:"prize_pool"`
	IsPublic    bool       `json:"is_public"`
	StartedAt   time.Time  `json:"started_at"`
}

func (d *ChallengeDraft) Done() bool {
	return d.Step == DraftStepDone
}

// Advance consumes one text input for the current step and moves the draft
// forward. It reports ok=false when the input does not parse for a numeric
// step; the draft is left untouched in that case.
func (d *ChallengeDraft) Advance(now time.Time, input string) (ok bool) {
	input = strings.TrimSpace(input)
	switch d.Step {
	case DraftStepName:
		if input == "" {
			return false
		}
		d.Name = input
		d.Step = DraftStepDescription
	case DraftStepDescription:
		d.Description = input
		d.Step = DraftStepTarget
	case DraftStepTarget:
		n, err := strconv.Atoi(input)
		if err != nil || n <= 0 {
			return false
		}
		d.TargetCount = n
		d.Step = DraftStepDeadline
	case DraftStepDeadline:
		days, err := strconv.Atoi(input)
		if err != nil || days < 0 {
			return false
		}
		if days > 0 {
			deadline := now.AddDate(0, 0, days)
			d.Deadline = &deadline
		}
		d.Step = DraftStepPool
	case DraftStepPool:
		pool, err := strconv.Atoi(input)
		if err != nil || pool < 0 {
			return false
		}
		d.PrizePool = pool
		d.Step = DraftStepVisibility
	case DraftStepVisibility:
		switch strings.ToLower(input) {
		case "public":
			d.IsPublic = true
		case "private":
			d.IsPublic = false
		default:
			return false
		}
		d.Step = DraftStepDone
	default:
		return false
	}
	return true
}

// Prompt is the question the front-end should ask for the current step.
func (d *ChallengeDraft) Prompt() string {
	switch d.Step {
	case DraftStepName:
		return "Pick a name for your challenge:"
	case DraftStepDescription:
		return "Add a description:"
	case DraftStepTarget:
		return "Set the numeric goal (e.g. 7):"
	case DraftStepDeadline:
		return "Deadline in days? 0 means no deadline:"
	case DraftStepPool:
		return "Prize pool size (virtual points):"
	case DraftStepVisibility:
		return "Public or private?"
	default:
		return ""
	}
}
