package blockchain

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func TestEventRegistryABI_Parses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(EventRegistryABI))
	if err != nil {
		t.Fatalf("abi.JSON: %v", err)
	}

	for _, name := range []string{
		"createEvent", "getEventDetails", "getAllEvents",
		"getCreatorEvents", "getEventTickets", "purchaseTicket", "transferTicket",
	} {
		if _, ok := parsed.Methods[name]; !ok {
			t.Fatalf("missing method %s", name)
		}
	}
	for _, name := range []string{"EventCreated", "TicketPurchased", "TicketTransferred"} {
		if _, ok := parsed.Events[name]; !ok {
			t.Fatalf("missing event %s", name)
		}
	}

	if parsed.Methods["purchaseTicket"].StateMutability != "payable" {
		t.Fatal("purchaseTicket must be payable")
	}
	if parsed.Methods["transferTicket"].StateMutability == "payable" {
		t.Fatal("transferTicket must not be payable")
	}
}

func TestTicketRegistryABI_Parses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(TicketRegistryABI))
	if err != nil {
		t.Fatalf("abi.JSON: %v", err)
	}

	for _, name := range []string{
		"getUserTickets", "getTicketDetails", "bulkMintTickets", "mintTicket",
		"buyTicket", "ownerOf", "transferTicket", "listTicketForSale", "claimRefund",
	} {
		if _, ok := parsed.Methods[name]; !ok {
			t.Fatalf("missing method %s", name)
		}
	}

	if parsed.Methods["bulkMintTickets"].StateMutability != "payable" {
		t.Fatal("bulkMintTickets must be payable")
	}

	details := parsed.Methods["getTicketDetails"]
	if len(details.Outputs) != 1 {
		t.Fatalf("unexpected getTicketDetails outputs: %d", len(details.Outputs))
	}
	tuple := details.Outputs[0].Type
	if got := len(tuple.TupleElems); got != 5 {
		t.Fatalf("unexpected ticket tuple arity: %d", got)
	}
}

func TestEventDetailsTuple_MapsToRecord(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(EventRegistryABI))
	if err != nil {
		t.Fatalf("abi.JSON: %v", err)
	}

	tuple := parsed.Methods["getEventDetails"].Outputs[0].Type
	wantFields := []string{
		"id", "name", "description", "date", "location",
		"price", "maxTickets", "ticketsSold", "isActive", "creator", "image",
	}
	if len(tuple.TupleRawNames) != len(wantFields) {
		t.Fatalf("unexpected event tuple arity: %d", len(tuple.TupleRawNames))
	}
	for i, want := range wantFields {
		if tuple.TupleRawNames[i] != want {
			t.Fatalf("tuple field %d: got %s want %s", i, tuple.TupleRawNames[i], want)
		}
	}
}
