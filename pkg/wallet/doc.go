// Package wallet owns the process-wide wallet session: whether an account is
// connected, which address and chain, and the signing credential used for
// transactions. A Manager is the single writer of the session; it exposes
// explicit Connect/Disconnect/Resume operations and reacts to provider
// account and chain change notifications until Close releases the
// subscription.
package wallet
