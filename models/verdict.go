package models

type ClosureReason string

const (
	ReasonDeadlinePassed  ClosureReason = "deadline_passed"
	ReasonCapacityReached ClosureReason = "capacity_reached"
)

// Verdict is the eligibility outcome for one event at one instant. An
// empty Reasons slice means registration is open; otherwise it lists
// every closure reason that applies, not just the first.
type Verdict struct {
	Reasons []ClosureReason `json:"reasons,omitempty"`
}

func (v Verdict) Open() bool {
	return len(v.Reasons) == 0
}

func (v Verdict) Has(reason ClosureReason) bool {
	for _, r := range v.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}
