package model

// OutcomeStatus is the per-assignment result of a dispatch.
type OutcomeStatus string

const (
	StatusSent      OutcomeStatus = "sent"
	StatusFailed    OutcomeStatus = "failed"
	StatusSimulated OutcomeStatus = "simulated"
)

// Outcome records what happened to one assignment during dispatch.
type Outcome struct {
	Index      int // position in the dispatched assignment list
	Assignment Assignment
	Status     OutcomeStatus
	MessageID  string // set by the mail sender on success
	Err        error  // set on failure
}

// Failed reports whether delivery of this assignment failed.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// Delivery is the unit of work placed on the dispatch queue.
type Delivery struct {
	Index   int
	From    string
	To      string
	Subject string
	Body    string

	Assignment Assignment
}
