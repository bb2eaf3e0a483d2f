package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/tickex/tickex-sdk-go/pkg/blockchain"
	"go.uber.org/zap"
)

// defaultReadTimeout bounds the chain reads performed while deriving a
// session from provider callbacks, where no caller context exists.
const defaultReadTimeout = 12 * time.Second

// Manager is the single writer of the wallet session. Provider change
// subscriptions are registered once at construction and released by Close.
type Manager struct {
	provider Provider
	notifier Notifier
	readTO   time.Duration

	mu      sync.RWMutex
	session Session

	changes chan ChangeEvent
	sub     event.Subscription
	wg      sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier replaces the default zap-backed notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithReadTimeout bounds session derivation reads triggered by provider
// events (connects initiated by the caller use the caller's context).
func WithReadTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.readTO = d
		}
	}
}

// NewManager creates a Manager over provider. A nil provider is allowed: the
// manager stays usable but Connect fails with ErrProviderMissing.
func NewManager(provider Provider, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		notifier: zapNotifier{},
		readTO:   defaultReadTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider != nil {
		m.changes = make(chan ChangeEvent, 8)
		m.sub = m.provider.Subscribe(m.changes)
		m.wg.Add(1)
		go m.watch()
	}
	return m
}

// Close releases the provider subscription and waits for the event loop to
// stop. The session itself is left as is; Close does not disconnect.
func (m *Manager) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
		m.wg.Wait()
	}
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Connect requests account authorization from the provider and derives a
// full session from the first authorized account. Returns
// ErrProviderMissing, ErrAuthorizationDenied, or an error wrapping
// ErrConnectionFailed; in every failure case the session reverts to the
// default disconnected shape. Success and failure both notify.
func (m *Manager) Connect(ctx context.Context) error {
	if m.provider == nil {
		m.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Wallet Not Found",
			Message: "no wallet provider is configured",
		})
		return ErrProviderMissing
	}

	m.setSession(Session{Status: Connecting})

	accounts, err := m.provider.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		m.setSession(Session{})
		if err != nil {
			zap.L().Error("account authorization failed", zap.Error(err))
		}
		m.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Connection Failed",
			Message: "account authorization was denied",
		})
		return ErrAuthorizationDenied
	}

	session, err := m.derive(ctx, accounts[0])
	if err != nil {
		m.setSession(Session{})
		zap.L().Error("session derivation failed", zap.Error(err))
		m.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Connection Failed",
			Message: err.Error(),
		})
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	m.setSession(session)
	m.notifier.Notify(Notification{
		Level:   LevelInfo,
		Title:   "Wallet Connected",
		Message: fmt.Sprintf("Connected to %s", shortAddress(session.Address)),
	})
	return nil
}

// Disconnect unconditionally resets the session to the default disconnected
// shape and notifies. It never fails.
func (m *Manager) Disconnect() {
	m.setSession(Session{})
	m.notifier.Notify(Notification{
		Level:   LevelInfo,
		Title:   "Wallet Disconnected",
		Message: "Your wallet has been disconnected",
	})
}

// Resume seeds the session from already-authorized accounts without
// prompting and without an observable Connecting state. With no authorized
// accounts or no provider it is a no-op; derivation failures are logged and
// leave the session disconnected.
func (m *Manager) Resume(ctx context.Context) {
	if m.provider == nil {
		return
	}
	accounts, err := m.provider.AuthorizedAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		if err != nil {
			zap.L().Debug("resume: listing authorized accounts failed", zap.Error(err))
		}
		return
	}
	session, err := m.derive(ctx, accounts[0])
	if err != nil {
		zap.L().Error("resume: session derivation failed", zap.Error(err))
		return
	}
	m.setSession(session)
	zap.L().Debug("wallet session resumed", zap.String("address", session.Address.Hex()))
}

// derive performs the atomic session derivation: signer, chain ID, balance.
// Any failure discards all partial state.
func (m *Manager) derive(ctx context.Context, account common.Address) (Session, error) {
	cred, err := m.provider.Signer(ctx, account)
	if err != nil {
		return Session{}, fmt.Errorf("get signer: %w", err)
	}
	chainID, err := m.provider.ChainID(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("get network: %w", err)
	}
	balanceWei, err := m.provider.Balance(ctx, account)
	if err != nil {
		return Session{}, fmt.Errorf("get balance: %w", err)
	}
	return Session{
		Address:    account,
		Credential: cred,
		ChainID:    chainID,
		Balance:    blockchain.WeiToEth(balanceWei),
		Status:     Connected,
	}, nil
}

func (m *Manager) setSession(s Session) {
	m.mu.Lock()
	m.session = s
	m.mu.Unlock()
}

// watch consumes provider change events until the subscription is released.
func (m *Manager) watch() {
	defer m.wg.Done()
	for {
		select {
		case ev := <-m.changes:
			m.handleChange(ev)
		case err := <-m.sub.Err():
			if err != nil {
				zap.L().Error("provider subscription failed", zap.Error(err))
			}
			return
		}
	}
}

func (m *Manager) handleChange(ev ChangeEvent) {
	switch ev.Kind {
	case AccountsChanged:
		if len(ev.Accounts) == 0 {
			m.Disconnect()
			return
		}
		if m.Session().Connected() {
			m.rederive(ev.Accounts[0])
		}
	case ChainChanged:
		if s := m.Session(); s.Connected() {
			m.rederive(s.Address)
		}
	}
}

// rederive refreshes the session for account after a provider-side change.
// Failures reset to disconnected rather than keeping a stale session.
func (m *Manager) rederive(account common.Address) {
	ctx, cancel := context.WithTimeout(context.Background(), m.readTO)
	defer cancel()

	session, err := m.derive(ctx, account)
	if err != nil {
		zap.L().Error("session re-derivation failed", zap.Error(err))
		m.setSession(Session{})
		m.notifier.Notify(Notification{
			Level:   LevelError,
			Title:   "Connection Failed",
			Message: err.Error(),
		})
		return
	}
	m.setSession(session)
	m.notifier.Notify(Notification{
		Level:   LevelInfo,
		Title:   "Wallet Connected",
		Message: fmt.Sprintf("Connected to %s", shortAddress(session.Address)),
	})
}

// shortAddress renders 0xABCD...1234 for notifications.
func shortAddress(addr common.Address) string {
	hex := addr.Hex()
	return hex[:6] + "..." + hex[len(hex)-4:]
}
