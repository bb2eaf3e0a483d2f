package config

import (
	"errors"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all SDK settings required to initialize the chain client,
// wallet session, and query/mutation layers.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// Network selects the target chain (chain ID and human-readable name).
	Network Network `json:"network" yaml:"network"`
	// RPCAddr is the Ethereum RPC/WS endpoint URL (required).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA private key backing the wallet
	// provider (optional if you only do read-only operations).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// EventRegistryAddr is the deployed event contract address (required).
	EventRegistryAddr string `json:"event_registry_addr" yaml:"event_registry_addr"`
	// TicketRegistryAddr is the deployed ticket contract address (required).
	TicketRegistryAddr string `json:"ticket_registry_addr" yaml:"ticket_registry_addr"`
	// LighthouseURL is the HTTP gateway used to fetch Filecoin-backed content.
	// Default: https://gateway.lighthouse.storage/ipfs/
	LighthouseURL string `json:"lighthouse_url" yaml:"lighthouse_url"`
	// IpfsURL is the HTTP API endpoint of the IPFS node used to read event
	// images and metadata. Default: https://ipfs.io:443
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Network describes a blockchain network (chain ID and name). ChainID is used
// for EIP-155 signing; Name is informational.
type Network struct {
	ChainID string `json:"chain_id"`
	Name    string `json:"network_name"`
}

// Sepolia is a predefined Network for Ethereum Sepolia testnet.
var Sepolia = Network{
	ChainID: "11155111",
	Name:    "sepolia",
}

// Main is a predefined Network for Ethereum mainnet.
var Main = Network{
	ChainID: "1",
	Name:    "main",
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // RPC dial/connect
	ChainRead   time.Duration // eth_call, balance etc
	ChainSubmit time.Duration // send tx
	ReceiptWait time.Duration // wait for tx confirmation
}

// Validate normalizes the configuration by applying implicit defaults for
// LighthouseURL, IpfsURL and Network (defaults to Sepolia) and verifies that
// RPCAddr and both registry addresses are provided and well formed.
func (c *Config) Validate() error {

	if c.LighthouseURL == "" {
		c.LighthouseURL = "https://gateway.lighthouse.storage/ipfs/"
	}

	if c.IpfsURL == "" {
		c.IpfsURL = "https://ipfs.io:443"
	}

	if c.Network.ChainID == "" {
		c.Network = Sepolia
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	if !common.IsHexAddress(c.EventRegistryAddr) {
		return errors.New("event registry address is required and must be a hex address")
	}

	if !common.IsHexAddress(c.TicketRegistryAddr) {
		return errors.New("ticket registry address is required and must be a hex address")
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	return tt
}

// FromEnv builds a Config from environment variables, loading a .env file
// first when one is present. Recognized variables:
//
//	TICKEX_RPC_ADDR, TICKEX_PRIVATE_KEY, TICKEX_EVENT_REGISTRY,
//	TICKEX_TICKET_REGISTRY, TICKEX_CHAIN_ID, TICKEX_NETWORK_NAME,
//	TICKEX_IPFS_URL, TICKEX_LIGHTHOUSE_URL, TICKEX_DEBUG
//
// The result is not validated; call Validate before use.
func FromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found")
	}

	return &Config{
		Network: Network{
			ChainID: os.Getenv("TICKEX_CHAIN_ID"),
			Name:    os.Getenv("TICKEX_NETWORK_NAME"),
		},
		RPCAddr:            os.Getenv("TICKEX_RPC_ADDR"),
		PrivateKey:         os.Getenv("TICKEX_PRIVATE_KEY"),
		EventRegistryAddr:  os.Getenv("TICKEX_EVENT_REGISTRY"),
		TicketRegistryAddr: os.Getenv("TICKEX_TICKET_REGISTRY"),
		IpfsURL:            os.Getenv("TICKEX_IPFS_URL"),
		LighthouseURL:      os.Getenv("TICKEX_LIGHTHOUSE_URL"),
		Debug:              os.Getenv("TICKEX_DEBUG") == "true",
	}
}
