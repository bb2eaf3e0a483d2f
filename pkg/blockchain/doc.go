// Package blockchain provides Go bindings and helpers to interact with the
// Tickex marketplace contracts on EVM chains. It initializes an Ethereum
// client, wires typed bindings for the EventRegistry and TicketRegistry
// contracts, exposes receipt-wait and transactor helpers, and includes
// utilities for wei/ETH conversions and key handling.
package blockchain
