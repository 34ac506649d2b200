package services

import "errors"

// Illegal state transitions are plain sentinel errors; handlers surface them
// as warnings (409) without mutating anything.
var (
	ErrAlreadyCompleted   = errors.New("sale is already completed")
	ErrSaleCancelled      = errors.New("cannot complete a cancelled sale")
	ErrCompletedImmutable = errors.New("completed sales cannot be modified")
	ErrCancelCompleted    = errors.New("cannot cancel a completed sale")
	ErrQuoteNotPending    = errors.New("quote is not pending")
	ErrQuoteNotApproved   = errors.New("only approved quotes can be converted")
	ErrPayrollProcessed   = errors.New("payroll run already processed")
	ErrItemReferenced     = errors.New("item is referenced by existing documents")
)
