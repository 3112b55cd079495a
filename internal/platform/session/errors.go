package session

import "errors"

var (
	// ErrConnectInProgress is returned when Connect is called while an earlier
	// connect has not finished yet
	ErrConnectInProgress = errors.New("wallet connection already in progress")

	// ErrSuperseded is returned when a connect finishes after the session was
	// disconnected or reconnected in the meantime; its results are discarded
	ErrSuperseded = errors.New("wallet connection superseded")
)
