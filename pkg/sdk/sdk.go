package sdk

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tickex/tickex-sdk-go/pkg/blockchain"
	"github.com/tickex/tickex-sdk-go/pkg/config"
	"github.com/tickex/tickex-sdk-go/pkg/mutation"
	"github.com/tickex/tickex-sdk-go/pkg/query"
	"github.com/tickex/tickex-sdk-go/pkg/storage"
	"github.com/tickex/tickex-sdk-go/pkg/wallet"
	"go.uber.org/zap"
)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the assembled SDK: a connected EVM client plus the wallet, query
// and mutation layers built on top of it.
type Core struct {
	cfg *config.Config

	evm      *blockchain.EVMClient
	store    *storage.Client
	wallet   *wallet.Manager
	query    *query.Service
	mutation *mutation.Mutator
}

// NewSDK validates the configuration, dials the chain endpoint, binds the
// registry contracts and wires the wallet, query and mutation layers. The
// wallet starts disconnected; call Core.Wallet().Connect to establish a
// session.
func NewSDK(cfg *config.Config, opts ...Option) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	if cfg.Debug {
		logger, err := zap.NewDevelopment()
		if err == nil {
			zap.ReplaceGlobals(logger)
		}
	}

	store := storage.NewStorage(cfg.IpfsURL, cfg.LighthouseURL)

	evm, err := blockchain.InitEvm(cfg.RPCAddr,
		common.HexToAddress(cfg.EventRegistryAddr),
		common.HexToAddress(cfg.TicketRegistryAddr))
	if err != nil {
		return nil, fmt.Errorf("init ethereum client: %w", err)
	}

	c := &Core{cfg: cfg, evm: evm, store: store}
	for _, opt := range opts {
		opt(c)
	}

	if c.wallet == nil {
		var keys []string
		if cfg.PrivateKey != "" {
			keys = append(keys, cfg.PrivateKey)
		}
		provider, err := wallet.NewKeyedProvider(evm.Client, keys...)
		if err != nil {
			evm.Close()
			return nil, fmt.Errorf("init wallet provider: %w", err)
		}
		c.wallet = wallet.NewManager(provider,
			wallet.WithReadTimeout(cfg.Timeouts.ChainRead))
	}

	c.query = query.NewService(evm.Events, evm.Tickets, c.wallet,
		query.WithBlockPin(evm),
		query.WithImageStore(store))

	c.mutation = mutation.NewMutator(mutation.Deps{
		Events:      evm.Events,
		Tickets:     evm.Tickets,
		Waiter:      evm,
		Session:     c.wallet,
		Cache:       c.query,
		ReceiptWait: cfg.Timeouts.ReceiptWait,
	})

	// Pick an existing authorization back up; a no-op for fresh providers.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.ChainRead)
	defer cancel()
	c.wallet.Resume(ctx)

	return c, nil
}

// Option customizes Core construction.
type Option func(*Core)

// WithWalletManager replaces the default key-backed wallet manager, for
// applications that bridge a browser or hardware wallet provider.
func WithWalletManager(m *wallet.Manager) Option {
	return func(c *Core) { c.wallet = m }
}

// Close releases the wallet watcher and the underlying RPC connection.
func (c *Core) Close() {
	if c.wallet != nil {
		c.wallet.Close()
	}
	if c.evm != nil {
		c.evm.Close()
	}
}

// Wallet returns the session manager.
func (c *Core) Wallet() *wallet.Manager { return c.wallet }

// Query returns the cached read layer.
func (c *Core) Query() *query.Service { return c.query }

// Mutation returns the write layer.
func (c *Core) Mutation() *mutation.Mutator { return c.mutation }

// Storage returns the IPFS/Lighthouse media store.
func (c *Core) Storage() *storage.Client { return c.store }

// Evm exposes the raw chain client and contract bindings for advanced use.
func (c *Core) Evm() *blockchain.EVMClient { return c.evm }

// Config returns the runtime configuration the Core was built with.
func (c *Core) Config() *config.Config { return c.cfg }
