package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EVMClient holds a connected ethclient.Client and typed bindings for the
// marketplace contracts: EventRegistry and TicketRegistry.
type EVMClient struct {
	Client  *ethclient.Client
	Events  *EventRegistry
	Tickets *TicketRegistry
}

// InitEvm dials an Ethereum endpoint and initializes typed bindings for the
// event and ticket registries at the given addresses.
//
// Parameters:
//   - endpoint: RPC/WS endpoint URL to dial.
//   - eventRegistry, ticketRegistry: deployed contract addresses.
//
// Returns a ready-to-use EVMClient or an error.
func InitEvm(endpoint string, eventRegistry, ticketRegistry common.Address) (*EVMClient, error) {
	var eth = new(EVMClient)

	var err error
	eth.Client, err = ethclient.Dial(endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.Error(err))
		return nil, err
	}

	eth.Events, err = NewEventRegistry(eventRegistry, eth.Client)
	if err != nil {
		return eth, err
	}

	eth.Tickets, err = NewTicketRegistry(ticketRegistry, eth.Client)
	if err != nil {
		return eth, err
	}

	return eth, nil
}

// Close releases the underlying RPC connection.
func (evm *EVMClient) Close() {
	if evm.Client != nil {
		evm.Client.Close()
	}
}

// GetCurrentBlockNumber returns the latest block number using a
// non-cancellable background context. Prefer GetCurrentBlockNumberCtx if you
// need cancellation.
func (evm *EVMClient) GetCurrentBlockNumber() (*big.Int, error) {
	return evm.GetCurrentBlockNumberCtx(context.Background())
}

// GetCurrentBlockNumberCtx returns the latest block number using the provided context.
func (evm *EVMClient) GetCurrentBlockNumberCtx(ctx context.Context) (*big.Int, error) {
	header, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Error("failed to get last block number", zap.Error(err))
		return nil, err
	}
	return header.Number, nil
}
