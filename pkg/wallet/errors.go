package wallet

import "errors"

var (
	// ErrProviderMissing means no wallet provider capability is available.
	// The user must install/configure one; retrying without that is useless.
	ErrProviderMissing = errors.New("wallet: no provider available")

	// ErrAuthorizationDenied means the provider returned no authorized
	// accounts for a connect request. Retryable by invoking Connect again.
	ErrAuthorizationDenied = errors.New("wallet: account authorization denied")

	// ErrConnectionFailed means a session derivation step failed after
	// authorization. The session is left disconnected; retryable.
	ErrConnectionFailed = errors.New("wallet: connection failed")
)
