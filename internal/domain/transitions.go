package domain

import (
	"errors"
	"fmt"
)

// BookingOperation is an action applied to a booking by staff or by the system
type BookingOperation string

const (
	OpApprove        BookingOperation = "approve"
	OpReject         BookingOperation = "reject"
	OpCancel         BookingOperation = "cancel"
	OpRequestDeposit BookingOperation = "request_deposit"
	OpConfirmDeposit BookingOperation = "confirm_deposit"
	OpReschedule     BookingOperation = "reschedule"
	OpCompleteVisit  BookingOperation = "complete_visit"
)

// ErrTransitionNotAllowed is returned when (state, operation) is not in the transition table
var ErrTransitionNotAllowed = errors.New("domain: booking transition not allowed")

// statusTransitions maps operation -> current status -> next status.
// A missing pair means the operation is rejected.
var statusTransitions = map[BookingOperation]map[BookingStatus]BookingStatus{
	OpApprove: {
		StatusPending: StatusConfirmed,
	},
	OpReject: {
		StatusPending:   StatusRejected,
		StatusConfirmed: StatusRejected,
	},
	OpCancel: {
		StatusPending:   StatusCancelled,
		StatusConfirmed: StatusCancelled,
	},
	OpRequestDeposit: {
		StatusConfirmed: StatusConfirmed,
	},
	OpConfirmDeposit: {
		StatusPending:   StatusPending,
		StatusConfirmed: StatusConfirmed,
	},
	OpReschedule: {
		StatusPending:   StatusPending,
		StatusConfirmed: StatusConfirmed,
	},
	OpCompleteVisit: {
		StatusConfirmed: StatusConfirmed,
	},
}

// depositTransitions constrains the deposit tri-state for deposit operations.
var depositTransitions = map[BookingOperation]map[DepositStatus]DepositStatus{
	OpRequestDeposit: {
		DepositNone: DepositWaiting,
	},
	OpConfirmDeposit: {
		DepositWaiting: DepositPaid,
	},
}

// NextStatus looks up the status a booking moves to under op
func NextStatus(from BookingStatus, op BookingOperation) (BookingStatus, error) {
	next, ok := statusTransitions[op][from]
	if !ok {
		return "", fmt.Errorf("%w: %s from status %s", ErrTransitionNotAllowed, op, from)
	}
	return next, nil
}

// NextDepositStatus looks up the deposit status for deposit operations.
// Operations that don't touch the deposit keep it unchanged.
func NextDepositStatus(from DepositStatus, op BookingOperation) (DepositStatus, error) {
	table, ok := depositTransitions[op]
	if !ok {
		return from, nil
	}
	next, ok := table[from]
	if !ok {
		return "", fmt.Errorf("%w: %s from deposit %s", ErrTransitionNotAllowed, op, from)
	}
	return next, nil
}

// CanApply reports whether op is allowed for the booking in its current state
func (b *Booking) CanApply(op BookingOperation) error {
	if _, err := NextStatus(b.Status, op); err != nil {
		return err
	}
	if _, err := NextDepositStatus(b.DepositStatus, op); err != nil {
		return err
	}
	if op == OpCompleteVisit && b.VisitCompleted {
		return fmt.Errorf("%w: visit already completed", ErrTransitionNotAllowed)
	}
	return nil
}

// Apply moves the booking to the next state under op.
// It returns true when a completed visit was undone, so the caller
// has to compensate the customer's visit count.
func (b *Booking) Apply(op BookingOperation) (visitReverted bool, err error) {
	if err := b.CanApply(op); err != nil {
		return false, err
	}

	status, _ := NextStatus(b.Status, op)
	deposit, _ := NextDepositStatus(b.DepositStatus, op)

	b.Status = status
	b.DepositStatus = deposit

	switch op {
	case OpReject, OpCancel, OpReschedule:
		visitReverted = b.VisitCompleted
		b.VisitCompleted = false
	case OpCompleteVisit:
		b.VisitCompleted = true
	}

	return visitReverted, nil
}
