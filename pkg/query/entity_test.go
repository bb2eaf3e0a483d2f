package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingTickets(t *testing.T) {
	ev := &Event{MaxTickets: 100, TicketsSold: 40}
	assert.Equal(t, uint64(60), ev.RemainingTickets())

	// Oversold records floor at zero instead of wrapping.
	ev = &Event{MaxTickets: 10, TicketsSold: 12}
	assert.Equal(t, uint64(0), ev.RemainingTickets())
}

func TestPartition(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	future := &Ticket{ID: "1", Event: &Event{Date: now.Add(48 * time.Hour)}}
	past := &Ticket{ID: "2", Event: &Event{Date: now.Add(-time.Hour)}}
	orphan := &Ticket{ID: "3"}

	up, done := Partition([]*Ticket{future, past, orphan}, now)

	assert.Equal(t, []*Ticket{future}, up)
	assert.Equal(t, []*Ticket{past, orphan}, done)
}

func TestPartition_Empty(t *testing.T) {
	up, done := Partition(nil, time.Now())
	assert.Empty(t, up)
	assert.Empty(t, done)
}
