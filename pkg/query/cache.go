package query

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tickex/tickex-sdk-go/pkg/metrics"
)

// snapshotCache holds the last fetched collections, keyed by filter and
// wallet address so snapshots never leak across accounts. Queries always
// refetch; the cache exists so callers can render the previous snapshot
// between refetches and so the mutation layer has something to invalidate
// or patch optimistically.
type snapshotCache struct {
	mu      sync.RWMutex
	events  map[eventsKey][]*Event
	tickets map[common.Address][]*Ticket
}

type eventsKey struct {
	onlyMine bool
	account  common.Address
}

func newSnapshotCache() *snapshotCache {
	return &snapshotCache{
		events:  make(map[eventsKey][]*Event),
		tickets: make(map[common.Address][]*Ticket),
	}
}

func (c *snapshotCache) putEvents(key eventsKey, events []*Event) {
	c.mu.Lock()
	c.events[key] = events
	c.mu.Unlock()
}

func (c *snapshotCache) getEvents(key eventsKey) ([]*Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events, ok := c.events[key]
	return events, ok
}

// invalidateEvents drops every event snapshot. Invalidation is deliberately
// coarse-grained: ticket counts may have moved for any cached filter.
func (c *snapshotCache) invalidateEvents() {
	c.mu.Lock()
	c.events = make(map[eventsKey][]*Event)
	c.mu.Unlock()
	metrics.CacheInvalidation("events")
}

func (c *snapshotCache) putTickets(account common.Address, tickets []*Ticket) {
	c.mu.Lock()
	c.tickets[account] = tickets
	c.mu.Unlock()
}

func (c *snapshotCache) getTickets(account common.Address) ([]*Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tickets, ok := c.tickets[account]
	return tickets, ok
}

func (c *snapshotCache) invalidateTickets(account common.Address) {
	c.mu.Lock()
	delete(c.tickets, account)
	c.mu.Unlock()
	metrics.CacheInvalidation("tickets")
}

// removeTicket is the optimistic patch applied after a confirmed transfer:
// the ticket disappears from the sender's snapshot immediately, ahead of the
// authoritative refetch. Reports whether anything was removed.
func (c *snapshotCache) removeTicket(account common.Address, ticketID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	tickets, ok := c.tickets[account]
	if !ok {
		return false
	}
	kept := make([]*Ticket, 0, len(tickets))
	removed := false
	for _, t := range tickets {
		if t.ID == ticketID {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if removed {
		c.tickets[account] = kept
	}
	return removed
}
