package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/darasa/core"
)

// State tracks a single status-change action through the coordinator.
type State int

const (
	StateIdle State = iota
	StateApplying
	StateConfirmed
	StateReverted
)

func (s State) String() string {
	switch s {
	case StateApplying:
		return "applying"
	case StateConfirmed:
		return "confirmed"
	case StateReverted:
		return "reverted"
	default:
		return "idle"
	}
}

// FailureKind classifies why a persistence write did not stick.
type FailureKind int

const (
	// FailureNetwork: the write did not complete.
	FailureNetwork FailureKind = iota
	// FailureRejected: the persistence collaborator received the write and refused it.
	FailureRejected
)

func (k FailureKind) String() string {
	if k == FailureRejected {
		return "rejected by server"
	}
	return "network error"
}

// RejectedError is returned by Writer implementations when the collaborator
// received the write and refused it (constraint violation, non-success
// response body, ...). Any other Writer error counts as a network failure.
type RejectedError struct {
	Reason string
}

func (err *RejectedError) Error() string {
	return "rejected by server: " + err.Reason
}

// UpdateFailedError is the single failure surfaced to callers of SetStatus;
// it carries the original cause and its classification.
type UpdateFailedError struct {
	Kind FailureKind
	Err  error
}

func (err *UpdateFailedError) Error() string {
	return fmt.Sprintf("attendance update failed (%s): %v", err.Kind, err.Err)
}

func (err *UpdateFailedError) Unwrap() error { return err.Err }

func classifyFailure(err error) FailureKind {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return FailureRejected
	}
	return FailureNetwork
}

// Writer persists one status change.
type Writer interface {
	SaveMark(ctx context.Context, m Mark) error
}

// Result reports where a status-change action ended up.
type Result struct {
	Record Record `json:"record"`
	State  State  `json:"-"`
}

// Coordinator governs a single attendance-edit action: apply the mutation to
// the store immediately so readers see it without waiting on persistence,
// then issue the write and reconcile. It is the only component that mutates
// the store.
//
// Edits to distinct cells are independent and unordered; repeated edits to
// the same cell are last-write-wins at the persistence layer.
type Coordinator struct {
	store  *Store
	writer Writer
	logger core.Logger
}

func NewCoordinator(store *Store, writer Writer, logger core.Logger) *Coordinator {
	return &Coordinator{store: store, writer: writer, logger: logger}
}

func (c *Coordinator) Store() *Store { return c.store }

// SetStatus runs the Idle -> Applying -> {Confirmed | Reverted} machine for
// one mark. On a persistence failure only the mutated cell is restored to
// its prior value, so edits confirmed on other cells while this write was in
// flight stay intact; the failure is returned as an *UpdateFailedError.
func (c *Coordinator) SetStatus(ctx context.Context, m Mark) (Result, error) {
	// snapshot first; reverting needs the prior cell value
	prev, err := c.store.Get(m.StudentID)
	if err != nil {
		return Result{State: StateIdle}, err
	}
	prevRaw, prevRecorded := prev.Attendance.Cell(m.Day, m.Period)

	rec, err := c.store.ApplyMark(m.StudentID, m.Day, m.Period, m.Status)
	if err != nil {
		return Result{State: StateIdle}, err
	}

	if err := c.writer.SaveMark(ctx, m); err != nil {
		reverted, restoreErr := c.store.RestoreCell(m.StudentID, m.Day, m.Period, prevRaw, prevRecorded)
		if restoreErr != nil {
			c.logger.Error(fmt.Sprintf("reverting optimistic mark: %v", restoreErr), restoreErr)
			reverted = prev
		}
		failure := &UpdateFailedError{Kind: classifyFailure(err), Err: err}
		c.logger.Warn(fmt.Sprintf("attendance mark not persisted, reverted: %v", err), err)
		return Result{Record: reverted, State: StateReverted}, failure
	}

	// the optimistic value is already correct; no further store change
	return Result{Record: rec, State: StateConfirmed}, nil
}
