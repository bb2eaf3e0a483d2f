package wallet

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/tickex/tickex-sdk-go/pkg/blockchain"
)

// Status is the connection state of a wallet session.
type Status int

const (
	// Disconnected is the default state: no credential, no address.
	Disconnected Status = iota
	// Connecting is the transient state while account authorization and
	// session derivation are in flight.
	Connecting
	// Connected means a credential, address, chain ID and balance are held.
	Connected
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Session is a snapshot of the wallet state. Credential, Address and ChainID
// are set iff Status is Connected. Sessions are never persisted; they are
// re-derived from the provider on every Manager construction.
type Session struct {
	Address    common.Address
	Credential *Credential
	ChainID    *big.Int
	// Balance is the account balance in ETH (display units).
	Balance decimal.Decimal
	Status  Status
}

// Connected reports whether the session holds a usable credential.
func (s Session) Connected() bool {
	return s.Status == Connected && s.Credential != nil
}

// Credential is a signing capability for one account. It approves and
// submits state-changing chain calls on the account's behalf.
type Credential struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewCredential wraps an ECDSA private key as a signing credential.
func NewCredential(key *ecdsa.PrivateKey) *Credential {
	return &Credential{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the account this credential signs for.
func (c *Credential) Address() common.Address {
	return c.address
}

// TransactOpts builds a keyed transactor for the given chain ID.
func (c *Credential) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return blockchain.GetTransactOpts(chainID, c.key)
}
