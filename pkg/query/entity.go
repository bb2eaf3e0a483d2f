package query

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Event is a normalized marketplace event. Prices are in ETH (display
// units); wei never leaves this layer.
type Event struct {
	ID          string
	Name        string
	Description string
	Location    string
	Image       string
	Date        time.Time
	Price       decimal.Decimal
	MaxTickets  uint64
	TicketsSold uint64
	Active      bool
	Creator     common.Address
}

// RemainingTickets returns maxTickets - ticketsSold, floored at zero.
func (e *Event) RemainingTickets() uint64 {
	if e.TicketsSold > e.MaxTickets {
		return 0
	}
	return e.MaxTickets - e.TicketsSold
}

// Ticket is a normalized owned ticket together with its event.
type Ticket struct {
	ID      string
	EventID string
	Owner   common.Address
	Price   decimal.Decimal
	ForSale bool
	// Refunded tickets stay in listings; the flag is the only trace.
	Refunded bool
	Event    *Event
	// PurchaseDate is approximated as the fetch time: the registry read used
	// here does not expose the mint timestamp. Known imprecision.
	PurchaseDate time.Time
}

// Partition splits tickets into upcoming and past relative to now, by event
// date. Pure function; recompute rather than store.
func Partition(tickets []*Ticket, now time.Time) (upcoming, past []*Ticket) {
	for _, t := range tickets {
		if t.Event != nil && t.Event.Date.After(now) {
			upcoming = append(upcoming, t)
		} else {
			past = append(past, t)
		}
	}
	return upcoming, past
}
