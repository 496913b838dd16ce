package repositories

import "errors"

// Sentinel errors surfaced by the queue repositories. Services map these to
// their own error vocabulary before they reach a handler.
var (
	ErrNoActiveSeries  = errors.New("no active sequence series for branch and service")
	ErrSeriesExhausted = errors.New("sequence series exhausted")
	ErrNoPendingToken  = errors.New("no pending token in desk queue")
	ErrTokenNotServing = errors.New("token is not in serving state")
	ErrEmployeeBusy    = errors.New("employee already has a serving token")
)
