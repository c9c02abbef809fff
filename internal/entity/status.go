package entity

import "fmt"

// Status tracks where an order sits in the production workflow.
type Status string

// The create form historically offered finish while the table editor offered
// cancel; both are accepted.
const (
	StatusPending  Status = "pending"
	StatusProgress Status = "progress"
	StatusFinish   Status = "finish"
	StatusDone     Status = "done"
	StatusCancel   Status = "cancel"
)

var statuses = []Status{StatusPending, StatusProgress, StatusFinish, StatusDone, StatusCancel}

// Statuses lists every allowed status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// Valid reports whether s belongs to the allowed set.
func (s Status) Valid() bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ParseStatus converts raw input into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

func (s Status) String() string {
	return string(s)
}
