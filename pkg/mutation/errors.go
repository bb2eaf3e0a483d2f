package mutation

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrMutationPending means the same logical action is already in flight.
	// Callers must disable the triggering control until it resolves.
	ErrMutationPending = errors.New("mutation: action already pending")

	// ErrNotConnected means a mutation was attempted without a connected
	// wallet session.
	ErrNotConnected = errors.New("mutation: wallet not connected")

	// ErrInvalidAddress means a recipient failed client-side validation; no
	// chain call was made. Retryable immediately after correction.
	ErrInvalidAddress = errors.New("mutation: invalid recipient address")
)

// OwnershipMismatchError is a pre-flight guard failure: the connected
// account does not own the ticket it tried to move. Both addresses are
// carried for diagnostics.
type OwnershipMismatchError struct {
	TicketID string
	Want     common.Address // the connected account
	Got      common.Address // the on-chain owner
}

// Error implements error.
func (e *OwnershipMismatchError) Error() string {
	return fmt.Sprintf("mutation: ticket %s is owned by %s, not by connected account %s",
		e.TicketID, e.Got.Hex(), e.Want.Hex())
}
