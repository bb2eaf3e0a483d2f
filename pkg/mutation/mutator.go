package mutation

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/tickex/tickex-sdk-go/pkg/metrics"
	"github.com/tickex/tickex-sdk-go/pkg/wallet"
	"go.uber.org/zap"
)

// Action identifies one logical state-changing operation.
type Action string

const (
	ActionPurchase    Action = "purchase"
	ActionTransfer    Action = "transfer"
	ActionListForSale Action = "list_for_sale"
	ActionRefund      Action = "refund"
	ActionCreateEvent Action = "create_event"
)

// State is the lifecycle position of one action.
type State int

const (
	Idle State = iota
	Pending
	Succeeded
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// EventWriter is the write surface of the event registry.
// *blockchain.EventRegistry satisfies it.
type EventWriter interface {
	CreateEvent(opts *bind.TransactOpts, name, description string, date *big.Int, location string, price, maxTickets *big.Int, image string) (*types.Transaction, error)
}

// TicketWriter is the surface of the ticket registry used for mutations,
// including the ownerOf pre-flight read. *blockchain.TicketRegistry
// satisfies it.
type TicketWriter interface {
	BulkMintTickets(opts *bind.TransactOpts, eventID, quantity *big.Int) (*types.Transaction, error)
	OwnerOf(opts *bind.CallOpts, ticketID *big.Int) (common.Address, error)
	TransferTicket(opts *bind.TransactOpts, ticketID *big.Int, to common.Address) (*types.Transaction, error)
	ListTicketForSale(opts *bind.TransactOpts, ticketID, newPrice *big.Int) (*types.Transaction, error)
	ClaimRefund(opts *bind.TransactOpts, ticketID *big.Int) (*types.Transaction, error)
}

// Waiter blocks until a submitted transaction is confirmed.
// *blockchain.EVMClient satisfies it.
type Waiter interface {
	WaitForTransaction(ctx context.Context, txHash common.Hash, maxBackoff time.Duration) (*types.Receipt, error)
}

// Cache is the slice of the query layer a mutator may invalidate or patch.
// *query.Service satisfies it.
type Cache interface {
	InvalidateEvents()
	InvalidateTickets(account common.Address)
	RemoveTicket(account common.Address, ticketID string)
}

// SessionSource yields the current wallet session. *wallet.Manager
// satisfies it.
type SessionSource interface {
	Session() wallet.Session
}

// Deps are the collaborators a Mutator is built from.
type Deps struct {
	Events  EventWriter
	Tickets TicketWriter
	Waiter  Waiter
	Session SessionSource
	Cache   Cache
	// Notifier receives the user-visible outcome of every mutation.
	// Defaults to the zap-backed notifier.
	Notifier wallet.Notifier
	// ReceiptWait bounds the confirmation wait per transaction.
	// Defaults to 90s.
	ReceiptWait time.Duration
	// MaxBackoff caps the receipt polling backoff. Zero means uncapped.
	MaxBackoff time.Duration
}

// Mutator executes state-changing operations with a per-action
// Idle/Pending/Succeeded/Failed lifecycle. Failures never touch the wallet
// session; they surface as a notification and a Failed state.
type Mutator struct {
	deps Deps

	mu     sync.Mutex
	states map[Action]State
}

// NewMutator builds a Mutator; Events, Tickets, Waiter, Session and Cache
// are required.
func NewMutator(deps Deps) *Mutator {
	if deps.Notifier == nil {
		deps.Notifier = wallet.ZapNotifier()
	}
	if deps.ReceiptWait == 0 {
		deps.ReceiptWait = 90 * time.Second
	}
	return &Mutator{
		deps:   deps,
		states: make(map[Action]State),
	}
}

// State returns the current lifecycle position of action.
func (m *Mutator) State(action Action) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[action]
}

// begin moves action to Pending, rejecting concurrent submissions of the
// same logical action.
func (m *Mutator) begin(action Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.states[action] == Pending {
		return ErrMutationPending
	}
	m.states[action] = Pending
	return nil
}

func (m *Mutator) finish(action Action, err error) {
	m.mu.Lock()
	if err != nil {
		m.states[action] = Failed
	} else {
		m.states[action] = Succeeded
	}
	m.mu.Unlock()
}

// PurchaseTicket mints quantity tickets for eventID in a single transaction,
// attaching unitPriceWei * quantity as payment, and waits for confirmation.
// On success the event snapshots are invalidated (ticket counts changed).
// Failures surface the underlying message verbatim; nothing is retried.
func (m *Mutator) PurchaseTicket(ctx context.Context, eventID string, unitPriceWei *big.Int, quantity uint64) error {
	if err := m.begin(ActionPurchase); err != nil {
		return err
	}
	err := m.purchase(ctx, eventID, unitPriceWei, quantity)
	m.finish(ActionPurchase, err)
	if err != nil {
		m.notifyFailure("Purchase Failed", err)
		return err
	}

	m.deps.Cache.InvalidateEvents()
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelInfo,
		Title:   "Purchase Successful",
		Message: fmt.Sprintf("Purchased %d ticket(s) for event %s", quantity, eventID),
	})
	return nil
}

func (m *Mutator) purchase(ctx context.Context, eventID string, unitPriceWei *big.Int, quantity uint64) error {
	sess := m.deps.Session.Session()
	if !sess.Connected() {
		return ErrNotConnected
	}
	id, err := parseID(eventID)
	if err != nil {
		return err
	}
	if unitPriceWei == nil || quantity == 0 {
		return errors.New("mutation: price and quantity are required")
	}

	opts, err := m.transactOpts(ctx, sess)
	if err != nil {
		return err
	}
	opts.Value = new(big.Int).Mul(unitPriceWei, new(big.Int).SetUint64(quantity))

	tx, err := m.deps.Tickets.BulkMintTickets(opts, id, new(big.Int).SetUint64(quantity))
	metrics.ChainWrite(string(ActionPurchase), err)
	if err != nil {
		return err
	}
	return m.wait(ctx, ActionPurchase, tx)
}

// TransferTicket moves ticketID to recipient. Two guards run before any
// write: the recipient must be a well-formed hex address
// (ErrInvalidAddress), and the on-chain owner must be the connected account
// (OwnershipMismatchError). On confirmed success the ticket is
// optimistically removed from the sender's snapshot and the recipient's
// snapshot is invalidated.
func (m *Mutator) TransferTicket(ctx context.Context, ticketID, recipient string) error {
	if err := m.begin(ActionTransfer); err != nil {
		return err
	}
	sender, err := m.transfer(ctx, ticketID, recipient)
	m.finish(ActionTransfer, err)
	if err != nil {
		m.notifyFailure("Transfer Failed", err)
		return err
	}

	m.deps.Cache.RemoveTicket(sender, ticketID)
	m.deps.Cache.InvalidateTickets(common.HexToAddress(recipient))
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelInfo,
		Title:   "Ticket Transferred",
		Message: fmt.Sprintf("Ticket %s sent to %s", ticketID, recipient),
	})
	return nil
}

func (m *Mutator) transfer(ctx context.Context, ticketID, recipient string) (common.Address, error) {
	if !common.IsHexAddress(recipient) {
		return common.Address{}, ErrInvalidAddress
	}

	sess := m.deps.Session.Session()
	if !sess.Connected() {
		return common.Address{}, ErrNotConnected
	}
	id, err := parseID(ticketID)
	if err != nil {
		return common.Address{}, err
	}

	owner, err := m.deps.Tickets.OwnerOf(&bind.CallOpts{Context: ctx, From: sess.Address}, id)
	metrics.ChainRead("ownerOf", err)
	if err != nil {
		return common.Address{}, fmt.Errorf("verify ownership: %w", err)
	}
	if owner != sess.Address {
		return common.Address{}, &OwnershipMismatchError{
			TicketID: ticketID,
			Want:     sess.Address,
			Got:      owner,
		}
	}

	opts, err := m.transactOpts(ctx, sess)
	if err != nil {
		return common.Address{}, err
	}
	tx, err := m.deps.Tickets.TransferTicket(opts, id, common.HexToAddress(recipient))
	metrics.ChainWrite(string(ActionTransfer), err)
	if err != nil {
		return common.Address{}, err
	}
	if err := m.wait(ctx, ActionTransfer, tx); err != nil {
		return common.Address{}, err
	}
	return sess.Address, nil
}

// ListForSale marks ticketID as purchasable at priceWei. No optimistic
// update: the listing shows only after the confirmed refetch.
func (m *Mutator) ListForSale(ctx context.Context, ticketID string, priceWei *big.Int) error {
	if err := m.begin(ActionListForSale); err != nil {
		return err
	}
	sess, err := m.singleTicketCall(ctx, ticketID, ActionListForSale, func(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
		return m.deps.Tickets.ListTicketForSale(opts, id, priceWei)
	})
	m.finish(ActionListForSale, err)
	if err != nil {
		m.notifyFailure("Listing Failed", err)
		return err
	}

	m.deps.Cache.InvalidateTickets(sess)
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelInfo,
		Title:   "Ticket Listed for Sale",
		Message: fmt.Sprintf("Ticket %s is now listed on the marketplace", ticketID),
	})
	return nil
}

// ClaimRefund flags ticketID as refunded. Conservative: no optimistic
// update, the refunded state shows after confirmation and refetch.
func (m *Mutator) ClaimRefund(ctx context.Context, ticketID string) error {
	if err := m.begin(ActionRefund); err != nil {
		return err
	}
	sess, err := m.singleTicketCall(ctx, ticketID, ActionRefund, func(opts *bind.TransactOpts, id *big.Int) (*types.Transaction, error) {
		return m.deps.Tickets.ClaimRefund(opts, id)
	})
	m.finish(ActionRefund, err)
	if err != nil {
		m.notifyFailure("Refund Failed", err)
		return err
	}

	m.deps.Cache.InvalidateTickets(sess)
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelInfo,
		Title:   "Refund Claimed",
		Message: fmt.Sprintf("Refund claimed for ticket %s", ticketID),
	})
	return nil
}

// EventDraft is the organizer's input for a new event.
type EventDraft struct {
	Name        string
	Description string
	Location    string
	Image       string
	Date        time.Time
	PriceWei    *big.Int
	MaxTickets  uint64
}

func (d EventDraft) validate(now time.Time) error {
	if d.Name == "" {
		return errors.New("mutation: event name is required")
	}
	if !d.Date.After(now) {
		return errors.New("mutation: event date must be in the future")
	}
	if d.MaxTickets == 0 {
		return errors.New("mutation: event needs at least one ticket")
	}
	if d.PriceWei == nil || d.PriceWei.Sign() < 0 {
		return errors.New("mutation: ticket price is required")
	}
	return nil
}

// CreateEvent registers a new event from draft and waits for confirmation.
// On success the event snapshots are invalidated so the new event shows on
// the next listing.
func (m *Mutator) CreateEvent(ctx context.Context, draft EventDraft) error {
	if err := m.begin(ActionCreateEvent); err != nil {
		return err
	}
	err := m.createEvent(ctx, draft)
	m.finish(ActionCreateEvent, err)
	if err != nil {
		m.notifyFailure("Event Creation Failed", err)
		return err
	}

	m.deps.Cache.InvalidateEvents()
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelInfo,
		Title:   "Event Created",
		Message: fmt.Sprintf("%q is live on the marketplace", draft.Name),
	})
	return nil
}

func (m *Mutator) createEvent(ctx context.Context, draft EventDraft) error {
	sess := m.deps.Session.Session()
	if !sess.Connected() {
		return ErrNotConnected
	}
	if err := draft.validate(time.Now()); err != nil {
		return err
	}

	opts, err := m.transactOpts(ctx, sess)
	if err != nil {
		return err
	}
	tx, err := m.deps.Events.CreateEvent(opts,
		draft.Name, draft.Description,
		big.NewInt(draft.Date.Unix()), draft.Location,
		draft.PriceWei, new(big.Int).SetUint64(draft.MaxTickets), draft.Image)
	metrics.ChainWrite(string(ActionCreateEvent), err)
	if err != nil {
		return err
	}
	return m.wait(ctx, ActionCreateEvent, tx)
}

// singleTicketCall runs one ticket-registry write with the shared session
// and confirmation handling, returning the sender address for cache work.
func (m *Mutator) singleTicketCall(ctx context.Context, ticketID string, action Action, send func(*bind.TransactOpts, *big.Int) (*types.Transaction, error)) (common.Address, error) {
	sess := m.deps.Session.Session()
	if !sess.Connected() {
		return common.Address{}, ErrNotConnected
	}
	id, err := parseID(ticketID)
	if err != nil {
		return common.Address{}, err
	}

	opts, err := m.transactOpts(ctx, sess)
	if err != nil {
		return common.Address{}, err
	}
	tx, err := send(opts, id)
	metrics.ChainWrite(string(action), err)
	if err != nil {
		return common.Address{}, err
	}
	if err := m.wait(ctx, action, tx); err != nil {
		return common.Address{}, err
	}
	return sess.Address, nil
}

// wait blocks until tx is confirmed, bounded by the configured receipt-wait
// timeout. The wait itself has no retry; a timeout is a failure.
func (m *Mutator) wait(ctx context.Context, action Action, tx *types.Transaction) error {
	wctx, cancel := context.WithTimeout(ctx, m.deps.ReceiptWait)
	defer cancel()

	start := time.Now()
	_, err := m.deps.Waiter.WaitForTransaction(wctx, tx.Hash(), m.deps.MaxBackoff)
	if err != nil {
		zap.L().Error("transaction confirmation failed",
			zap.String("action", string(action)),
			zap.String("tx", tx.Hash().Hex()),
			zap.Error(err))
		return err
	}
	metrics.Confirmation(string(action), time.Since(start))
	zap.L().Debug("transaction confirmed",
		zap.String("action", string(action)),
		zap.String("tx", tx.Hash().Hex()))
	return nil
}

// transactOpts builds signing options from the session credential.
func (m *Mutator) transactOpts(ctx context.Context, sess wallet.Session) (*bind.TransactOpts, error) {
	opts, err := sess.Credential.TransactOpts(sess.ChainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// notifyFailure surfaces the underlying error message verbatim.
func (m *Mutator) notifyFailure(title string, err error) {
	m.deps.Notifier.Notify(wallet.Notification{
		Level:   wallet.LevelError,
		Title:   title,
		Message: err.Error(),
	})
}

func parseID(id string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(id, 10)
	if !ok || n.Sign() <= 0 {
		return nil, fmt.Errorf("mutation: invalid id %q", id)
	}
	return n, nil
}
