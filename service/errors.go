package service

import "errors"

var (
	// ErrInvalidInput indicates bad arguments to the accrual calculator
	// or a job entry point. Fatal to the call, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound indicates no balance row exists for the user.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountExists indicates a balance row already exists for the
	// user being provisioned.
	ErrAccountExists = errors.New("account already exists")

	// ErrNoAccrualData indicates a settlement found no unsettled daily
	// accruals for the requested month. Non-fatal to batch callers:
	// log, skip the user, continue.
	ErrNoAccrualData = errors.New("no unsettled accrual data for period")

	// ErrDuplicateAccrual is returned by the accrual repository when the
	// (user, business date) uniqueness constraint rejects an insert.
	// The daily job recovers by re-reading the existing record; this
	// error never reaches callers of RunDailyAccrual.
	ErrDuplicateAccrual = errors.New("accrual already recorded for date")
)
