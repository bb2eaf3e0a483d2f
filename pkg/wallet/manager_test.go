package wallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts provider behavior and emits change events on demand.
type fakeProvider struct {
	mu       sync.Mutex
	accounts []common.Address
	creds    map[common.Address]*Credential
	chainID  *big.Int
	balance  *big.Int

	requestErr error
	signerErr  error
	chainErr   error
	balanceErr error

	requested bool
	feed      event.Feed
}

func newFakeProvider(t *testing.T) (*fakeProvider, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	cred := NewCredential(key)
	addr := cred.Address()
	return &fakeProvider{
		accounts: []common.Address{addr},
		creds:    map[common.Address]*Credential{addr: cred},
		chainID:  big.NewInt(11155111),
		balance:  new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
	}, addr
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requested = true
	return p.accounts, p.requestErr
}

func (p *fakeProvider) AuthorizedAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.requested {
		return nil, nil
	}
	return p.accounts, nil
}

func (p *fakeProvider) Signer(ctx context.Context, account common.Address) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signerErr != nil {
		return nil, p.signerErr
	}
	return p.creds[account], nil
}

func (p *fakeProvider) ChainID(ctx context.Context) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chainID, p.chainErr
}

func (p *fakeProvider) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, p.balanceErr
}

func (p *fakeProvider) Subscribe(ch chan<- ChangeEvent) event.Subscription {
	return p.feed.Subscribe(ch)
}

func (p *fakeProvider) emit(ev ChangeEvent) {
	p.feed.Send(ev)
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

func TestManagerConnect_Success(t *testing.T) {
	provider, addr := newFakeProvider(t)
	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))

	sess := m.Session()
	assert.Equal(t, Connected, sess.Status)
	assert.True(t, sess.Connected())
	assert.Equal(t, addr, sess.Address)
	require.NotNil(t, sess.Credential)
	assert.Equal(t, addr, sess.Credential.Address())
	assert.Equal(t, big.NewInt(11155111), sess.ChainID)
	assert.True(t, sess.Balance.Equal(decimal.NewFromInt(2)), "balance %s", sess.Balance)

	n, ok := notes.last()
	require.True(t, ok)
	assert.Equal(t, LevelInfo, n.Level)
	assert.Equal(t, "Wallet Connected", n.Title)
}

func TestManagerConnect_NoProvider(t *testing.T) {
	notes := &recordingNotifier{}
	m := NewManager(nil, WithNotifier(notes))
	defer m.Close()

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, ErrProviderMissing)

	n, ok := notes.last()
	require.True(t, ok)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Wallet Not Found", n.Title)
}

func TestManagerConnect_AuthorizationDenied(t *testing.T) {
	provider, _ := newFakeProvider(t)
	provider.accounts = nil

	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, ErrAuthorizationDenied)

	sess := m.Session()
	assert.Equal(t, Disconnected, sess.Status)
	assert.Nil(t, sess.Credential)

	n, ok := notes.last()
	require.True(t, ok)
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Connection Failed", n.Title)
}

func TestManagerConnect_DerivationFailureIsAtomic(t *testing.T) {
	provider, _ := newFakeProvider(t)
	provider.balanceErr = errors.New("rpc down")

	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	err := m.Connect(context.Background())
	require.ErrorIs(t, err, ErrConnectionFailed)

	// No partial session: address and chain ID were resolved but must be
	// discarded along with everything else.
	sess := m.Session()
	assert.Equal(t, Disconnected, sess.Status)
	assert.Equal(t, common.Address{}, sess.Address)
	assert.Nil(t, sess.Credential)
	assert.Nil(t, sess.ChainID)
}

func TestManagerDisconnect(t *testing.T) {
	provider, _ := newFakeProvider(t)
	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	m.Disconnect()

	sess := m.Session()
	assert.Equal(t, Disconnected, sess.Status)
	assert.Nil(t, sess.Credential)

	n, ok := notes.last()
	require.True(t, ok)
	assert.Equal(t, "Wallet Disconnected", n.Title)
}

func TestManagerResume(t *testing.T) {
	provider, addr := newFakeProvider(t)

	first := NewManager(provider, WithNotifier(&recordingNotifier{}))
	require.NoError(t, first.Connect(context.Background()))
	first.Close()

	// A fresh manager over the same provider picks the session back up
	// without prompting and without notifying.
	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	m.Resume(context.Background())

	sess := m.Session()
	assert.True(t, sess.Connected())
	assert.Equal(t, addr, sess.Address)
	assert.Zero(t, notes.count())
}

func TestManagerResume_NotAuthorized(t *testing.T) {
	provider, _ := newFakeProvider(t)

	m := NewManager(provider, WithNotifier(&recordingNotifier{}))
	defer m.Close()

	m.Resume(context.Background())
	assert.False(t, m.Session().Connected())
}

func TestManagerAccountsCleared_Disconnects(t *testing.T) {
	provider, _ := newFakeProvider(t)
	notes := &recordingNotifier{}
	m := NewManager(provider, WithNotifier(notes))
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))

	provider.emit(ChangeEvent{Kind: AccountsChanged})

	require.Eventually(t, func() bool {
		return !m.Session().Connected()
	}, time.Second, 10*time.Millisecond)

	n, ok := notes.last()
	require.True(t, ok)
	assert.Equal(t, "Wallet Disconnected", n.Title)
}

func TestManagerAccountSwitch_Rederives(t *testing.T) {
	provider, first := newFakeProvider(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	second := NewCredential(key)
	provider.mu.Lock()
	provider.creds[second.Address()] = second
	provider.mu.Unlock()

	m := NewManager(provider, WithNotifier(&recordingNotifier{}))
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, first, m.Session().Address)

	provider.emit(ChangeEvent{Kind: AccountsChanged, Accounts: []common.Address{second.Address()}})

	require.Eventually(t, func() bool {
		s := m.Session()
		return s.Connected() && s.Address == second.Address()
	}, time.Second, 10*time.Millisecond)

	sess := m.Session()
	require.NotNil(t, sess.Credential)
	assert.Equal(t, second.Address(), sess.Credential.Address())
}

func TestManagerChainChanged_Rederives(t *testing.T) {
	provider, _ := newFakeProvider(t)
	m := NewManager(provider, WithNotifier(&recordingNotifier{}))
	defer m.Close()

	require.NoError(t, m.Connect(context.Background()))

	provider.mu.Lock()
	provider.chainID = big.NewInt(1)
	provider.mu.Unlock()

	provider.emit(ChangeEvent{Kind: ChainChanged})

	require.Eventually(t, func() bool {
		s := m.Session()
		return s.Connected() && s.ChainID.Cmp(big.NewInt(1)) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestManagerChainChanged_WhileDisconnectedIsIgnored(t *testing.T) {
	provider, _ := newFakeProvider(t)
	m := NewManager(provider, WithNotifier(&recordingNotifier{}))
	defer m.Close()

	provider.emit(ChangeEvent{Kind: ChainChanged})

	// Give the watcher a moment; the session must stay disconnected.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, m.Session().Connected())
}
