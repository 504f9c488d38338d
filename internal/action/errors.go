package action

import "errors"

// ErrActionNotFound is returned when an action ID does not exist in the ledger.
var ErrActionNotFound = errors.New("action: not found")
