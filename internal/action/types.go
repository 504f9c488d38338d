package action

// Action is an asynchronous operation requested against a device.
//
// The ledger entry does not record which device it was started for; the
// association lives only in the executor that completes it.
type Action struct {
	ID      string `json:"action_id"`
	Status  Status `json:"status"`
	Details string `json:"details"`
}

// Status represents the lifecycle state of an action.
type Status string

// Status constants.
//
// The ledger only produces StatusRunning and StatusCompleted. StatusPending
// and StatusFailed are part of the wire enum and reserved for clients.
const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Type identifies what kind of work an action performs.
type Type string

// Type constants.
const (
	TypeSoftwareUpdate Type = "SOFTWARE_UPDATE"
)
