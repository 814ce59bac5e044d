package app

import "errors"

// ErrLedgerUnavailable reports that no activity ledger is configured.
var ErrLedgerUnavailable = errors.New("activity ledger unavailable")
