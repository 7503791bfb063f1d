package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{errors.New("execution reverted: Not the owner"), ErrNotOwner},
		{errors.New("execution reverted: ERC721: caller is not token owner or approved"), ErrNotOwner},
		{errors.New("insufficient funds for gas * price + value"), ErrInsufficientFunds},
		{errors.New("execution reverted: Insufficient payment"), ErrInsufficientFunds},
		{errors.New("execution reverted: Not enough shares available"), ErrSoldOut},
		{errors.New("execution reverted: amount exceeds available shares"), ErrSoldOut},
		{errors.New("exceeds block gas limit"), ErrTxFailed},
		{errors.New("execution reverted: ERC721: invalid token ID"), ErrNotFound},
		{errors.New("execution reverted"), ErrTxReverted},
		{errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), ErrTxFailed},
		{fmt.Errorf("wait: %w", context.DeadlineExceeded), ErrTxFailed},
	}

	for _, tt := range tests {
		got := Classify(tt.in)
		if !errors.Is(got, tt.want) {
			t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClassifyKeepsSentinels(t *testing.T) {
	err := fmt.Errorf("buy shares: %w", ErrSoldOut)
	if got := Classify(err); got != err {
		t.Fatalf("expected error to pass through unchanged, got %v", got)
	}
	if Classify(nil) != nil {
		t.Fatal("expected nil")
	}
}
