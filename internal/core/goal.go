package core

import "time"

const (
	StatusActive         GoalStatus = "active"
	StatusNearCompletion GoalStatus = "near_completion"
	StatusOverdue        GoalStatus = "overdue"
	StatusCompleted      GoalStatus = "completed"
)

type GoalStatus string

// GoalProgress is the derived view of a goal against a reference day.
type GoalProgress struct {
	Percentage float64    `json:"progress_percentage"`
	Status     GoalStatus `json:"status"`
	Remaining  Money      `json:"remaining"`
}

// EvaluateGoal computes completion percentage (clamped to [0, 100]), status
// and the remaining amount to target. A non-positive target is a precondition
// violation and returns ErrZeroTarget; the data-model invariant guarantees
// callers never hit it with stored goals.
//
// Status precedence: Completed beats Overdue beats NearCompletion beats Active.
func EvaluateGoal(g Goal, today time.Time) (GoalProgress, error) {
	if g.TargetAmount.Cents <= 0 {
		return GoalProgress{}, ErrZeroTarget
	}

	pct := float64(g.CurrentAmount.Cents*100) / float64(g.TargetAmount.Cents)
	if pct > 100 {
		pct = 100
	}

	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Cents < 0 {
		remaining = Money{}
	}

	status := StatusActive
	switch {
	case pct >= 100:
		status = StatusCompleted
	case !g.TargetDate.IsEmpty() && g.TargetDate.Before(DateOf(today).Time):
		status = StatusOverdue
	case pct >= 75:
		status = StatusNearCompletion
	}

	return GoalProgress{Percentage: pct, Status: status, Remaining: remaining}, nil
}
