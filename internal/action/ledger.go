// Package action provides the Action Ledger: keyed storage of asynchronous
// device actions and generation of their identifiers.
//
// Like device.Registry, the Ledger does no locking of its own. The fleet
// service guards it with the same lock that protects the registry.
//
// Completed actions are never evicted, so the ledger grows for the lifetime
// of the process.
package action

import (
	"fmt"
	"math/rand"
)

// ID format constants.
const (
	idPrefix = "ACTION-"
	idMin    = 1000
	idSpan   = 9000 // ids are drawn from [idMin, idMin+idSpan)
)

// IDGenerator produces action identifiers.
type IDGenerator func() string

// GenerateID returns a random identifier of the form ACTION-NNNN.
//
// Only 9000 distinct values exist and no check is made against ids already
// in use, so a new id can collide with an existing one.
func GenerateID() string {
	return fmt.Sprintf("%s%d", idPrefix, idMin+rand.Intn(idSpan)) //nolint:gosec // identifiers, not secrets
}

// Ledger is the keyed store of Action records.
type Ledger struct {
	actions map[string]*Action
	newID   IDGenerator
}

// NewLedger creates an empty ledger.
// A nil generator selects GenerateID.
func NewLedger(gen IDGenerator) *Ledger {
	if gen == nil {
		gen = GenerateID
	}
	return &Ledger{
		actions: make(map[string]*Action),
		newID:   gen,
	}
}

// NextID returns a fresh identifier from the ledger's generator.
// The identifier is not reserved.
func (l *Ledger) NextID() string {
	return l.newID()
}

// Create inserts a RUNNING action with the given details.
// An existing entry with the same id is silently overwritten.
func (l *Ledger) Create(id, details string) {
	l.actions[id] = &Action{
		ID:      id,
		Status:  StatusRunning,
		Details: details,
	}
}

// Complete marks an action COMPLETED and replaces its details.
// Unknown ids are ignored.
func (l *Ledger) Complete(id, details string) {
	a, ok := l.actions[id]
	if !ok {
		return
	}
	a.Status = StatusCompleted
	a.Details = details
}

// Get returns a snapshot of the action.
// Returns ErrActionNotFound if the id is not in the ledger.
func (l *Ledger) Get(id string) (Action, error) {
	a, ok := l.actions[id]
	if !ok {
		return Action{}, ErrActionNotFound
	}
	return *a, nil
}

// Len returns the number of actions held, completed ones included.
func (l *Ledger) Len() int {
	return len(l.actions)
}

// Running returns the number of actions not yet completed.
func (l *Ledger) Running() int {
	n := 0
	for _, a := range l.actions {
		if a.Status == StatusRunning {
			n++
		}
	}
	return n
}
