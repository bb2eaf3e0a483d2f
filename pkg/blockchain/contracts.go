package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// The ABIs below are the subset of the deployed marketplace contracts that
// this SDK calls. Addresses are supplied through config; the contracts are
// maintained separately and never deployed from here.

// EventRegistryABI is the ABI of the event contract (event lifecycle,
// primary ticket sales, creator index).
const EventRegistryABI = `[
 {"type":"function","name":"createEvent","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"description","type":"string"},{"name":"date","type":"uint256"},{"name":"location","type":"string"},{"name":"price","type":"uint256"},{"name":"maxTickets","type":"uint256"},{"name":"image","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"getEventDetails","stateMutability":"view","inputs":[{"name":"eventId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"description","type":"string"},{"name":"date","type":"uint256"},{"name":"location","type":"string"},{"name":"price","type":"uint256"},{"name":"maxTickets","type":"uint256"},{"name":"ticketsSold","type":"uint256"},{"name":"isActive","type":"bool"},{"name":"creator","type":"address"},{"name":"image","type":"string"}]}]},
 {"type":"function","name":"getAllEvents","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"getCreatorEvents","stateMutability":"view","inputs":[{"name":"creator","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"getEventTickets","stateMutability":"view","inputs":[{"name":"eventId","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"purchaseTicket","stateMutability":"payable","inputs":[{"name":"eventId","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"transferTicket","stateMutability":"nonpayable","inputs":[{"name":"eventId","type":"uint256"},{"name":"ticketId","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
 {"type":"event","name":"EventCreated","anonymous":false,"inputs":[{"name":"eventId","type":"uint256","indexed":true},{"name":"name","type":"string","indexed":false},{"name":"organizer","type":"address","indexed":false}]},
 {"type":"event","name":"TicketPurchased","anonymous":false,"inputs":[{"name":"eventId","type":"uint256","indexed":true},{"name":"ticketId","type":"uint256","indexed":true},{"name":"buyer","type":"address","indexed":false}]},
 {"type":"event","name":"TicketTransferred","anonymous":false,"inputs":[{"name":"eventId","type":"uint256","indexed":true},{"name":"ticketId","type":"uint256","indexed":true},{"name":"from","type":"address","indexed":false},{"name":"to","type":"address","indexed":false}]}
]`

// TicketRegistryABI is the ABI of the ERC-721 ticket contract (minting,
// ownership, resale listing, refunds).
const TicketRegistryABI = `[
 {"type":"function","name":"getUserTickets","stateMutability":"view","inputs":[{"name":"user","type":"address"}],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"getTicketDetails","stateMutability":"view","inputs":[{"name":"ticketId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"id","type":"uint256"},{"name":"eventId","type":"uint256"},{"name":"price","type":"uint256"},{"name":"isForSale","type":"bool"},{"name":"isRefunded","type":"bool"}]}]},
 {"type":"function","name":"bulkMintTickets","stateMutability":"payable","inputs":[{"name":"eventId","type":"uint256"},{"name":"quantity","type":"uint256"}],"outputs":[{"name":"","type":"uint256[]"}]},
 {"type":"function","name":"mintTicket","stateMutability":"payable","inputs":[{"name":"eventId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"buyTicket","stateMutability":"payable","inputs":[{"name":"ticketId","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"name":"","type":"address"}]},
 {"type":"function","name":"transferTicket","stateMutability":"nonpayable","inputs":[{"name":"ticketId","type":"uint256"},{"name":"to","type":"address"}],"outputs":[]},
 {"type":"function","name":"listTicketForSale","stateMutability":"nonpayable","inputs":[{"name":"ticketId","type":"uint256"},{"name":"newPrice","type":"uint256"}],"outputs":[]},
 {"type":"function","name":"claimRefund","stateMutability":"nonpayable","inputs":[{"name":"ticketId","type":"uint256"}],"outputs":[]},
 {"type":"event","name":"TicketMinted","anonymous":false,"inputs":[{"name":"ticketId","type":"uint256","indexed":true},{"name":"eventId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true}]},
 {"type":"event","name":"TicketListed","anonymous":false,"inputs":[{"name":"ticketId","type":"uint256","indexed":true},{"name":"price","type":"uint256","indexed":false}]},
 {"type":"event","name":"TicketRefunded","anonymous":false,"inputs":[{"name":"ticketId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true}]}
]`

// EventRecord mirrors the event tuple returned by getEventDetails. Field
// names follow the ABI component names so abi unpacking maps them directly.
type EventRecord struct {
	Id          *big.Int
	Name        string
	Description string
	Date        *big.Int
	Location    string
	Price       *big.Int
	MaxTickets  *big.Int
	TicketsSold *big.Int
	IsActive    bool
	Creator     common.Address
	Image       string
}

// TicketRecord mirrors the ticket tuple returned by getTicketDetails.
type TicketRecord struct {
	Id         *big.Int
	EventId    *big.Int
	Price      *big.Int
	IsForSale  bool
	IsRefunded bool
}

// EventCreatedLog is the EventCreated contract event.
type EventCreatedLog struct {
	EventId   *big.Int
	Name      string
	Organizer common.Address
	Raw       types.Log
}

// TicketPurchasedLog is the TicketPurchased contract event.
type TicketPurchasedLog struct {
	EventId  *big.Int
	TicketId *big.Int
	Buyer    common.Address
	Raw      types.Log
}

// TicketTransferredLog is the TicketTransferred contract event.
type TicketTransferredLog struct {
	EventId  *big.Int
	TicketId *big.Int
	From     common.Address
	To       common.Address
	Raw      types.Log
}

// EventRegistry is a typed handle to the event contract.
type EventRegistry struct {
	address  common.Address
	contract *bind.BoundContract
}

// TicketRegistry is a typed handle to the ticket contract.
type TicketRegistry struct {
	address  common.Address
	contract *bind.BoundContract
}

type contractBackend interface {
	bind.ContractCaller
	bind.ContractTransactor
	bind.ContractFilterer
}

// NewEventRegistry binds the event contract at address to the given backend.
func NewEventRegistry(address common.Address, backend contractBackend) (*EventRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(EventRegistryABI))
	if err != nil {
		return nil, err
	}
	return &EventRegistry{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// NewTicketRegistry binds the ticket contract at address to the given backend.
func NewTicketRegistry(address common.Address, backend contractBackend) (*TicketRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(TicketRegistryABI))
	if err != nil {
		return nil, err
	}
	return &TicketRegistry{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// Address returns the bound contract address.
func (r *EventRegistry) Address() common.Address { return r.address }

// Address returns the bound contract address.
func (r *TicketRegistry) Address() common.Address { return r.address }

// GetAllEvents returns every event identifier known to the registry.
func (r *EventRegistry) GetAllEvents(opts *bind.CallOpts) ([]*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getAllEvents"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetCreatorEvents returns the event identifiers created by the given address.
func (r *EventRegistry) GetCreatorEvents(opts *bind.CallOpts, creator common.Address) ([]*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getCreatorEvents", creator); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetEventDetails returns the full on-chain record for one event. A revert
// (unknown id) surfaces as an error; callers decide whether that is fatal.
func (r *EventRegistry) GetEventDetails(opts *bind.CallOpts, eventID *big.Int) (EventRecord, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getEventDetails", eventID); err != nil {
		return EventRecord{}, err
	}
	return *abi.ConvertType(out[0], new(EventRecord)).(*EventRecord), nil
}

// GetEventTickets returns the ticket identifiers minted for one event.
func (r *EventRegistry) GetEventTickets(opts *bind.CallOpts, eventID *big.Int) ([]*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getEventTickets", eventID); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// CreateEvent registers a new event. Price is in wei, date in epoch seconds.
func (r *EventRegistry) CreateEvent(opts *bind.TransactOpts, name, description string, date *big.Int, location string, price, maxTickets *big.Int, image string) (*types.Transaction, error) {
	return r.contract.Transact(opts, "createEvent", name, description, date, location, price, maxTickets, image)
}

// PurchaseTicket buys one primary-sale ticket; the event price must be
// attached as opts.Value.
func (r *EventRegistry) PurchaseTicket(opts *bind.TransactOpts, eventID *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "purchaseTicket", eventID)
}

// TransferTicket moves a ticket of the given event to another account.
func (r *EventRegistry) TransferTicket(opts *bind.TransactOpts, eventID, ticketID *big.Int, to common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "transferTicket", eventID, ticketID, to)
}

// FilterEventCreated reads historical EventCreated logs, optionally narrowed
// to specific event ids.
func (r *EventRegistry) FilterEventCreated(opts *bind.FilterOpts, eventIDs []*big.Int) ([]*EventCreatedLog, error) {
	idRule := make([]interface{}, 0, len(eventIDs))
	for _, id := range eventIDs {
		idRule = append(idRule, id)
	}
	logs, sub, err := r.contract.FilterLogs(opts, "EventCreated", idRule)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	var events []*EventCreatedLog
	// FilterLogs hands back a pre-filled buffered channel.
	for {
		select {
		case log := <-logs:
			ev := new(EventCreatedLog)
			if err := r.contract.UnpackLog(ev, "EventCreated", log); err != nil {
				return nil, err
			}
			ev.Raw = log
			events = append(events, ev)
		default:
			return events, nil
		}
	}
}

// WatchTicketPurchased subscribes to TicketPurchased logs and forwards them
// to sink until the subscription is released.
func (r *EventRegistry) WatchTicketPurchased(opts *bind.WatchOpts, sink chan<- *TicketPurchasedLog, eventIDs, ticketIDs []*big.Int) (event.Subscription, error) {
	return r.watch(opts, "TicketPurchased", func(log types.Log) error {
		ev := new(TicketPurchasedLog)
		if err := r.contract.UnpackLog(ev, "TicketPurchased", log); err != nil {
			return err
		}
		ev.Raw = log
		sink <- ev
		return nil
	}, toRule(eventIDs), toRule(ticketIDs))
}

// WatchTicketTransferred subscribes to TicketTransferred logs.
func (r *EventRegistry) WatchTicketTransferred(opts *bind.WatchOpts, sink chan<- *TicketTransferredLog, eventIDs, ticketIDs []*big.Int) (event.Subscription, error) {
	return r.watch(opts, "TicketTransferred", func(log types.Log) error {
		ev := new(TicketTransferredLog)
		if err := r.contract.UnpackLog(ev, "TicketTransferred", log); err != nil {
			return err
		}
		ev.Raw = log
		sink <- ev
		return nil
	}, toRule(eventIDs), toRule(ticketIDs))
}

func (r *EventRegistry) watch(opts *bind.WatchOpts, name string, deliver func(types.Log) error, query ...[]interface{}) (event.Subscription, error) {
	logs, sub, err := r.contract.WatchLogs(opts, name, query...)
	if err != nil {
		return nil, err
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				if err := deliver(log); err != nil {
					return err
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

func toRule(ids []*big.Int) []interface{} {
	rule := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		rule = append(rule, id)
	}
	return rule
}

// GetUserTickets returns the ticket identifiers owned by the given account.
func (r *TicketRegistry) GetUserTickets(opts *bind.CallOpts, owner common.Address) ([]*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getUserTickets", owner); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// GetTicketDetails returns the on-chain record for one ticket.
func (r *TicketRegistry) GetTicketDetails(opts *bind.CallOpts, ticketID *big.Int) (TicketRecord, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getTicketDetails", ticketID); err != nil {
		return TicketRecord{}, err
	}
	return *abi.ConvertType(out[0], new(TicketRecord)).(*TicketRecord), nil
}

// OwnerOf returns the current owner of a ticket token.
func (r *TicketRegistry) OwnerOf(opts *bind.CallOpts, ticketID *big.Int) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "ownerOf", ticketID); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// BulkMintTickets mints quantity tickets for one event in a single
// transaction; the total price must be attached as opts.Value.
func (r *TicketRegistry) BulkMintTickets(opts *bind.TransactOpts, eventID, quantity *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "bulkMintTickets", eventID, quantity)
}

// MintTicket mints a single ticket; the event price must be attached as
// opts.Value.
func (r *TicketRegistry) MintTicket(opts *bind.TransactOpts, eventID *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "mintTicket", eventID)
}

// BuyTicket purchases a ticket listed for resale; the listed price must be
// attached as opts.Value.
func (r *TicketRegistry) BuyTicket(opts *bind.TransactOpts, ticketID *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "buyTicket", ticketID)
}

// TransferTicket moves a ticket token to another account.
func (r *TicketRegistry) TransferTicket(opts *bind.TransactOpts, ticketID *big.Int, to common.Address) (*types.Transaction, error) {
	return r.contract.Transact(opts, "transferTicket", ticketID, to)
}

// ListTicketForSale marks a ticket as purchasable at newPrice (wei).
func (r *TicketRegistry) ListTicketForSale(opts *bind.TransactOpts, ticketID, newPrice *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "listTicketForSale", ticketID, newPrice)
}

// ClaimRefund flags a ticket as refunded and returns its price to the owner.
func (r *TicketRegistry) ClaimRefund(opts *bind.TransactOpts, ticketID *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "claimRefund", ticketID)
}
