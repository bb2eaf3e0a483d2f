package query

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/tickex/tickex-sdk-go/pkg/blockchain"
	"github.com/tickex/tickex-sdk-go/pkg/metrics"
	"github.com/tickex/tickex-sdk-go/pkg/wallet"
	"go.uber.org/zap"
)

// ErrNotReady means a read operation needs a connected wallet session. It is
// a caller-visible "not ready" condition, not a chain failure; no network
// call was attempted.
var ErrNotReady = errors.New("query: wallet session not ready")

// EventReader is the read surface of the event registry used by this layer.
// *blockchain.EventRegistry satisfies it.
type EventReader interface {
	GetAllEvents(opts *bind.CallOpts) ([]*big.Int, error)
	GetCreatorEvents(opts *bind.CallOpts, creator common.Address) ([]*big.Int, error)
	GetEventDetails(opts *bind.CallOpts, eventID *big.Int) (blockchain.EventRecord, error)
}

// TicketReader is the read surface of the ticket registry used by this layer.
// *blockchain.TicketRegistry satisfies it.
type TicketReader interface {
	GetUserTickets(opts *bind.CallOpts, owner common.Address) ([]*big.Int, error)
	GetTicketDetails(opts *bind.CallOpts, ticketID *big.Int) (blockchain.TicketRecord, error)
}

// SessionSource yields the current wallet session. *wallet.Manager
// satisfies it.
type SessionSource interface {
	Session() wallet.Session
}

// BlockSource resolves the current block number, used to pin a listing's
// detail reads to one chain snapshot. *blockchain.EVMClient satisfies it.
type BlockSource interface {
	GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error)
}

// ImageStore fetches content-addressed media. *storage.Client satisfies it.
type ImageStore interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
}

// Service is the Entity Query Layer: normalized, snapshot-cached reads of
// events and tickets, tolerant of per-entity failures.
type Service struct {
	events  EventReader
	tickets TicketReader
	session SessionSource

	cache  *snapshotCache
	blocks BlockSource
	images ImageStore
	clock  func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithBlockPin makes listings resolve the current block once and pin every
// per-id detail read to it, trading the original best-effort view for a
// consistent chain snapshot.
func WithBlockPin(src BlockSource) ServiceOption {
	return func(s *Service) { s.blocks = src }
}

// WithImageStore enables FetchImage for ipfs:// and filecoin:// image URIs.
func WithImageStore(store ImageStore) ServiceOption {
	return func(s *Service) { s.images = store }
}

// withClock overrides the fetch-time source; tests only.
func withClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.clock = now }
}

// NewService builds the query layer over the given registries and session.
func NewService(events EventReader, tickets TicketReader, session SessionSource, opts ...ServiceOption) *Service {
	s := &Service{
		events:  events,
		tickets: tickets,
		session: session,
		cache:   newSnapshotCache(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEvents fetches every event (or, with onlyMine, events created by the
// connected account), newest first. Individual malformed or unreadable
// entries are skipped, never fatal. Requires a connected session; otherwise
// ErrNotReady is returned and no chain call is made. The result replaces the
// snapshot for this filter and account.
func (s *Service) ListEvents(ctx context.Context, onlyMine bool) ([]*Event, error) {
	sess := s.session.Session()
	if !sess.Connected() {
		return nil, ErrNotReady
	}

	callOpts := s.callOpts(ctx, sess.Address)

	var (
		ids []*big.Int
		err error
	)
	if onlyMine {
		ids, err = s.events.GetCreatorEvents(callOpts, sess.Address)
		metrics.ChainRead("getCreatorEvents", err)
	} else {
		ids, err = s.events.GetAllEvents(callOpts)
		metrics.ChainRead("getAllEvents", err)
	}
	if err != nil {
		zap.L().Error("failed to list event ids", zap.Error(err))
		return nil, err
	}

	out := make([]*Event, 0, len(ids))
	for _, id := range ids {
		rec, err := s.events.GetEventDetails(callOpts, id)
		metrics.ChainRead("getEventDetails", err)
		if err != nil {
			zap.L().Debug("skipping event: detail read failed",
				zap.String("eventId", id.String()), zap.Error(err))
			continue
		}
		ev, ok := normalizeEvent(rec)
		if !ok {
			zap.L().Debug("skipping malformed event record",
				zap.String("eventId", id.String()))
			continue
		}
		if onlyMine && ev.Creator != sess.Address {
			continue
		}
		out = append(out, ev)
	}

	sortEventsDesc(out)
	s.cache.putEvents(eventsKey{onlyMine: onlyMine, account: sess.Address}, out)
	return out, nil
}

// GetEvent fetches a single event by id. A nonexistent event (sentinel id
// "0", empty name, or a reverted read) yields (nil, nil): absent data, not
// an error.
func (s *Service) GetEvent(ctx context.Context, id string) (*Event, error) {
	eventID, ok := new(big.Int).SetString(id, 10)
	if !ok || eventID.Sign() == 0 {
		return nil, nil
	}

	rec, err := s.events.GetEventDetails(&bind.CallOpts{Context: ctx}, eventID)
	metrics.ChainRead("getEventDetails", err)
	if err != nil {
		zap.L().Debug("event read reverted", zap.String("eventId", id), zap.Error(err))
		return nil, nil
	}
	ev, valid := normalizeEvent(rec)
	if !valid {
		return nil, nil
	}
	return ev, nil
}

// ListMyTickets fetches the connected account's tickets together with their
// events. A ticket is included only when both its own record and its event
// record resolve; either failing excludes the ticket entirely. The result
// replaces the account's ticket snapshot.
func (s *Service) ListMyTickets(ctx context.Context) ([]*Ticket, error) {
	sess := s.session.Session()
	if !sess.Connected() {
		return nil, ErrNotReady
	}

	callOpts := s.callOpts(ctx, sess.Address)

	ids, err := s.tickets.GetUserTickets(callOpts, sess.Address)
	metrics.ChainRead("getUserTickets", err)
	if err != nil {
		zap.L().Error("failed to list owned tickets", zap.Error(err))
		return nil, err
	}

	now := s.clock()
	out := make([]*Ticket, 0, len(ids))
	for _, id := range ids {
		rec, err := s.tickets.GetTicketDetails(callOpts, id)
		metrics.ChainRead("getTicketDetails", err)
		if err != nil {
			zap.L().Debug("skipping ticket: detail read failed",
				zap.String("ticketId", id.String()), zap.Error(err))
			continue
		}

		evRec, err := s.events.GetEventDetails(callOpts, rec.EventId)
		metrics.ChainRead("getEventDetails", err)
		if err != nil {
			zap.L().Debug("skipping ticket: event read failed",
				zap.String("ticketId", id.String()),
				zap.String("eventId", rec.EventId.String()), zap.Error(err))
			continue
		}
		ev, valid := normalizeEvent(evRec)
		if !valid {
			zap.L().Debug("skipping ticket: event record malformed",
				zap.String("ticketId", id.String()))
			continue
		}

		out = append(out, &Ticket{
			ID:           rec.Id.String(),
			EventID:      rec.EventId.String(),
			Owner:        sess.Address,
			Price:        blockchain.WeiToEth(rec.Price),
			ForSale:      rec.IsForSale,
			Refunded:     rec.IsRefunded,
			Event:        ev,
			PurchaseDate: now,
		})
	}

	s.cache.putTickets(sess.Address, out)
	return out, nil
}

// FetchImage retrieves an event image. Content-addressed URIs (ipfs://,
// filecoin://) resolve through the configured image store; plain http(s)
// URLs are fetched directly.
func (s *Service) FetchImage(ctx context.Context, image string) ([]byte, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return fetchHTTP(ctx, image)
	}
	if s.images == nil {
		return nil, errors.New("query: no image store configured")
	}
	return s.images.ReadFile(ctx, image)
}

// CachedEvents returns the last snapshot for this filter and the connected
// account, if any. Snapshots are advisory; ListEvents is the authority.
func (s *Service) CachedEvents(onlyMine bool) ([]*Event, bool) {
	sess := s.session.Session()
	return s.cache.getEvents(eventsKey{onlyMine: onlyMine, account: sess.Address})
}

// CachedTickets returns the connected account's last ticket snapshot, if any.
func (s *Service) CachedTickets() ([]*Ticket, bool) {
	sess := s.session.Session()
	return s.cache.getTickets(sess.Address)
}

// InvalidateEvents drops every event snapshot.
func (s *Service) InvalidateEvents() {
	s.cache.invalidateEvents()
}

// InvalidateTickets drops the ticket snapshot for account.
func (s *Service) InvalidateTickets(account common.Address) {
	s.cache.invalidateTickets(account)
}

// RemoveTicket optimistically removes one ticket from account's snapshot.
func (s *Service) RemoveTicket(account common.Address, ticketID string) {
	s.cache.removeTicket(account, ticketID)
}

// callOpts builds read options for the session, pinning the block number
// when a block source is configured.
func (s *Service) callOpts(ctx context.Context, from common.Address) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx, From: from}
	if s.blocks != nil {
		num, err := s.blocks.GetCurrentBlockNumberCtx(ctx)
		if err != nil {
			zap.L().Debug("block pin unavailable, reads stay unpinned", zap.Error(err))
			return opts
		}
		opts.BlockNumber = num
	}
	return opts
}

// fetchHTTP retrieves a plain URL with the caller's context.
func fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			zap.L().Error("error closing image response", zap.Error(cerr))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// normalizeEvent converts an on-chain record into an Event. Records with the
// sentinel id "0" or an empty name denote nonexistent events and report
// ok=false.
func normalizeEvent(rec blockchain.EventRecord) (*Event, bool) {
	if rec.Id == nil || rec.Id.Sign() == 0 || rec.Name == "" {
		return nil, false
	}
	return &Event{
		ID:          rec.Id.String(),
		Name:        rec.Name,
		Description: rec.Description,
		Location:    rec.Location,
		Image:       rec.Image,
		Date:        time.Unix(rec.Date.Int64(), 0).UTC(),
		Price:       blockchain.WeiToEth(rec.Price),
		MaxTickets:  rec.MaxTickets.Uint64(),
		TicketsSold: rec.TicketsSold.Uint64(),
		Active:      rec.IsActive,
		Creator:     rec.Creator,
	}, true
}

// sortEventsDesc orders events by numeric id, newest first (ids are assigned
// sequentially on chain).
func sortEventsDesc(events []*Event) {
	sort.Slice(events, func(i, j int) bool {
		a, _ := new(big.Int).SetString(events[i].ID, 10)
		b, _ := new(big.Int).SetString(events[j].ID, 10)
		return a.Cmp(b) > 0
	})
}
