package commands

import "errors"

// ErrVerificationFailed signals exit status 1 after the report was printed.
var ErrVerificationFailed = errors.New("verification failed")

// Error messages
const (
	ErrHistoryStoreUnavailable = "history store unavailable (historyDB is empty)"
	ErrCommandRequired         = "a command to classify is required"
)

// Success messages
const (
	MsgNoHistoryRecorded = "No history recorded yet."
	MsgCacheCleared      = "Cache cleared."
	MsgHistoryCleared    = "History cleared."
)
