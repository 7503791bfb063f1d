package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoWallet          = errors.New("chain: no wallet available")
	ErrNotOwner          = errors.New("chain: caller is not permitted to modify this token")
	ErrInsufficientFunds = errors.New("chain: insufficient funds")
	ErrSoldOut           = errors.New("chain: not enough shares available")
	ErrNotFound          = errors.New("chain: token does not exist")
	ErrTxReverted        = errors.New("chain: transaction reverted")
	ErrTxFailed          = errors.New("chain: transaction failed")
)

// Nodes and contracts only report failures as text, so errors are classified by
// matching known fragments of the message. Order matters: the first match wins.
var classifications = []struct {
	target    error
	fragments []string
}{
	{ErrNotOwner, []string{"not the owner", "caller is not owner", "not token owner", "not approved", "ownable:"}},
	{ErrInsufficientFunds, []string{"insufficient funds", "insufficient payment", "incorrect payment", "not enough ether"}},
	{ErrSoldOut, []string{"not enough shares", "exceeds available shares", "sold out"}},
	{ErrNotFound, []string{"nonexistent token", "invalid token id", "owner query for nonexistent"}},
	{ErrNoWallet, []string{"unknown account", "no keystore", "authentication needed"}},
	{ErrTxReverted, []string{"execution reverted", "revert"}},
}

// Classify wraps err with the sentinel that best describes it. The original message
// is kept so it can be logged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range []error{ErrNoWallet, ErrNotOwner, ErrInsufficientFunds, ErrSoldOut, ErrNotFound, ErrTxReverted, ErrTxFailed} {
		if errors.Is(err, known) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timed out waiting for transaction: %v", ErrTxFailed, err)
	}

	msg := strings.ToLower(err.Error())
	for _, c := range classifications {
		for _, fragment := range c.fragments {
			if strings.Contains(msg, fragment) {
				return fmt.Errorf("%w: %v", c.target, err)
			}
		}
	}

	return fmt.Errorf("%w: %v", ErrTxFailed, err)
}
