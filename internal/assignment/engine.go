package assignment

import (
	"errors"
	"math/rand"
	"time"
)

// Engine picks the counselor a saved call record is assigned to.
//
// Priority:
//  1) Explicit assignee chosen by the operator
//  2) Triage-suggested owner, when it names a pool member
//  3) Weighted pool selection
//
// Returns an assignment only. No side effects (no DB writes, no notifications).
type Engine struct {
	Pool []WeightedCounselor

	RNG *rand.Rand
	Now func() time.Time
}

// WeightedCounselor is an eligible assignee with a selection weight.
type WeightedCounselor struct {
	UserID string

	// Weight must be > 0 to participate in selection.
	Weight int
}

type Input struct {
	WorkspaceID string

	// Explicit is the operator's choice; always wins when set.
	Explicit string

	// Suggested is the triage-recommended owner, honored when in the pool.
	Suggested string
}

var ErrNoAssignee = errors.New("assignment: no eligible assignee")

func NewEngine(pool []WeightedCounselor, rng *rand.Rand) *Engine {
	return &Engine{Pool: pool, RNG: rng, Now: time.Now}
}

func (e *Engine) Assign(in Input) (string, error) {
	if in.WorkspaceID == "" {
		return "", errors.New("assignment: workspace_id required")
	}

	if in.Explicit != "" {
		return in.Explicit, nil
	}

	if in.Suggested != "" && e.inPool(in.Suggested) {
		return in.Suggested, nil
	}

	if assignee, ok := e.pickWeighted(); ok {
		return assignee, nil
	}
	return "", ErrNoAssignee
}

func (e *Engine) inPool(userID string) bool {
	for _, c := range e.Pool {
		if c.UserID == userID && c.Weight > 0 {
			return true
		}
	}
	return false
}

func (e *Engine) pickWeighted() (string, bool) {
	var total int
	for _, c := range e.Pool {
		if c.Weight <= 0 {
			continue
		}
		total += c.Weight
	}
	if total <= 0 {
		return "", false
	}

	rng := e.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	r := rng.Intn(total) // 0..total-1

	var acc int
	for _, c := range e.Pool {
		if c.Weight <= 0 {
			continue
		}
		acc += c.Weight
		if r < acc {
			return c.UserID, true
		}
	}
	return "", false
}
