package model

import "time"

// Run is the persisted summary of one pipeline execution.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Extracted  int
	Cleaned    int
	SinksOK    int
	SinksTotal int
	Outcome    string
}
