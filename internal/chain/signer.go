package chain

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// LoadSigner builds transaction options from either a hex private key or a JSON
// keystore file. It returns nil options and no error when neither is configured:
// the service then runs read-only.
func LoadSigner(privateKeyHex, keystorePath, passphrase string, chainID *big.Int) (*bind.TransactOpts, error) {
	switch {
	case privateKeyHex != "" && keystorePath != "":
		return nil, errors.New("chain: set either a private key or a keystore, not both")

	case privateKeyHex != "":
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
		if err != nil {
			return nil, fmt.Errorf("chain: invalid private key: %w", err)
		}
		return bind.NewKeyedTransactorWithChainID(key, chainID)

	case keystorePath != "":
		f, err := os.Open(keystorePath)
		if err != nil {
			return nil, fmt.Errorf("chain: open keystore: %w", err)
		}
		defer f.Close()
		return bind.NewTransactorWithChainID(f, passphrase, chainID)
	}

	return nil, nil
}
