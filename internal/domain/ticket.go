package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusSeen     TicketStatus = "seen"
	TicketStatusAnswered TicketStatus = "answered"
	TicketStatusClosed   TicketStatus = "closed"
)

var (
	// ActiveTicketStatuses are tickets still being worked on.
	ActiveTicketStatuses = []TicketStatus{TicketStatusNew, TicketStatusSeen, TicketStatusAnswered}
	// ClosedTicketStatuses are finished tickets.
	ClosedTicketStatuses = []TicketStatus{TicketStatusClosed}
)

// FirstResponse is the first answer given on a ticket.
type FirstResponse struct {
	TicketID        string
	DepartmentID    string
	CreatedAt       time.Time
	FirstAnsweredAt time.Time
}

// Latency returns the time from ticket creation to the first answer.
func (f FirstResponse) Latency() time.Duration {
	d := f.FirstAnsweredAt.Sub(f.CreatedAt)
	if d < 0 {
		return 0
	}
	return d
}
