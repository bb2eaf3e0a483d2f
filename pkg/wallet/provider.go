package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/tickex/tickex-sdk-go/pkg/blockchain"
)

// ChangeKind discriminates provider change notifications.
type ChangeKind int

const (
	// AccountsChanged reports that the authorized account set changed.
	AccountsChanged ChangeKind = iota
	// ChainChanged reports that the provider switched networks.
	ChainChanged
)

// ChangeEvent is a provider-side notification consumed by the Manager.
type ChangeEvent struct {
	Kind     ChangeKind
	Accounts []common.Address // AccountsChanged: the new authorized set
	ChainID  *big.Int         // ChainChanged: the new chain, may be nil
}

// Provider is the wallet capability boundary: account authorization, signer
// derivation, network and balance reads, and change subscriptions.
type Provider interface {
	// RequestAccounts asks for account authorization, possibly prompting the
	// user. A denial resolves to an empty slice, not an error.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// AuthorizedAccounts returns the already-authorized accounts without
	// prompting.
	AuthorizedAccounts(ctx context.Context) ([]common.Address, error)
	// Signer returns the signing credential for an authorized account.
	Signer(ctx context.Context, account common.Address) (*Credential, error)
	// ChainID returns the provider's current network identifier.
	ChainID(ctx context.Context) (*big.Int, error)
	// Balance returns the account balance in wei.
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	// Subscribe registers ch for change events. The returned subscription
	// must be unsubscribed to release the registration.
	Subscribe(ch chan<- ChangeEvent) event.Subscription
}

// ChainReader is the part of an Ethereum client the keyed provider needs.
// *ethclient.Client satisfies it.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// KeyedProvider is a Provider backed by locally held private keys and an
// Ethereum client. It stands in for a browser wallet in server-side and CLI
// environments: the key set plays the role of the installed accounts, and
// authorization is granted on the first RequestAccounts call.
type KeyedProvider struct {
	client ChainReader

	mu         sync.Mutex
	creds      []*Credential
	authorized bool

	feed event.Feed
}

// NewKeyedProvider builds a provider over client with zero or more
// hex-encoded private keys.
func NewKeyedProvider(client ChainReader, hexKeys ...string) (*KeyedProvider, error) {
	p := &KeyedProvider{client: client}
	for _, hexKey := range hexKeys {
		_, key, err := blockchain.ParsePrivateKeyECDSA(hexKey)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		p.creds = append(p.creds, NewCredential(key))
	}
	return p, nil
}

// RequestAccounts authorizes and returns the configured accounts. With no
// keys configured the result is empty, mirroring a user dismissing the
// authorization prompt.
func (p *KeyedProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.creds) == 0 {
		return nil, nil
	}
	p.authorized = true
	return p.addressesLocked(), nil
}

// AuthorizedAccounts returns the accounts without prompting; empty until a
// RequestAccounts call has succeeded.
func (p *KeyedProvider) AuthorizedAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized {
		return nil, nil
	}
	return p.addressesLocked(), nil
}

// Signer returns the credential for the given authorized account.
func (p *KeyedProvider) Signer(ctx context.Context, account common.Address) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.authorized {
		return nil, fmt.Errorf("account %s is not authorized", account)
	}
	for _, c := range p.creds {
		if c.Address() == account {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no key held for account %s", account)
}

// ChainID returns the connected network identifier.
func (p *KeyedProvider) ChainID(ctx context.Context) (*big.Int, error) {
	return p.client.ChainID(ctx)
}

// Balance returns the latest balance of account in wei.
func (p *KeyedProvider) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	return p.client.BalanceAt(ctx, account, nil)
}

// Subscribe registers ch for change events.
func (p *KeyedProvider) Subscribe(ch chan<- ChangeEvent) event.Subscription {
	return p.feed.Subscribe(ch)
}

// AddAccount installs another key and emits an AccountsChanged event.
func (p *KeyedProvider) AddAccount(hexKey string) (common.Address, error) {
	_, key, err := blockchain.ParsePrivateKeyECDSA(hexKey)
	if err != nil {
		return common.Address{}, fmt.Errorf("parse private key: %w", err)
	}
	cred := NewCredential(key)

	p.mu.Lock()
	p.creds = append(p.creds, cred)
	accounts := p.addressesLocked()
	p.mu.Unlock()

	p.feed.Send(ChangeEvent{Kind: AccountsChanged, Accounts: accounts})
	return cred.Address(), nil
}

// RemoveAccount drops the key for account, if held, and emits an
// AccountsChanged event with the remaining set.
func (p *KeyedProvider) RemoveAccount(account common.Address) {
	p.mu.Lock()
	kept := p.creds[:0]
	for _, c := range p.creds {
		if c.Address() != account {
			kept = append(kept, c)
		}
	}
	p.creds = kept
	accounts := p.addressesLocked()
	p.mu.Unlock()

	p.feed.Send(ChangeEvent{Kind: AccountsChanged, Accounts: accounts})
}

func (p *KeyedProvider) addressesLocked() []common.Address {
	accounts := make([]common.Address, len(p.creds))
	for i, c := range p.creds {
		accounts[i] = c.Address()
	}
	return accounts
}
