// Package artifact reads Hardhat compilation artifacts and publishes a deployed
// contract's address and ABI to the frontend.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressFile is the name of the file, inside the frontend directory, mapping
// contract names to deployed addresses.
const AddressFile = "contract-address.json"

var (
	ErrNoBytecode = errors.New("artifact: no bytecode (is the contract abstract or an interface?)")
	ErrNoABI      = errors.New("artifact: no abi")
)

// Artifact is the JSON file Hardhat writes to artifacts/contracts/<Source>.sol/<Name>.json.
type Artifact struct {
	Format           string          `json:"_format"`
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
}

// DefaultPath returns where Hardhat puts the artifact for name under root.
func DefaultPath(root, name string) string {
	return filepath.Join(root, "artifacts", "contracts", name+".sol", name+".json")
}

func Load(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	if len(a.ABI) == 0 || string(a.ABI) == "null" {
		return nil, ErrNoABI
	}
	if a.ContractName == "" {
		a.ContractName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &a, nil
}

func (a *Artifact) ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(string(a.ABI)))
}

// Code returns the creation bytecode.
func (a *Artifact) Code() ([]byte, error) {
	if a.Bytecode == "" || a.Bytecode == "0x" {
		return nil, ErrNoBytecode
	}
	return hexutil.Decode(a.Bytecode)
}

// Export writes contract-address.json and <ContractName>.json into dir, creating it
// if needed. Existing entries for other contracts in contract-address.json are kept.
func Export(dir string, a *Artifact, addr common.Address) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	addresses := map[string]string{}
	if b, err := os.ReadFile(filepath.Join(dir, AddressFile)); err == nil {
		if err := json.Unmarshal(b, &addresses); err != nil {
			return fmt.Errorf("artifact: decode existing %s: %w", AddressFile, err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	addresses[a.ContractName] = addr.Hex()

	b, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(dir, AddressFile, b); err != nil {
		return err
	}

	b, err = json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(dir, a.ContractName+".json", b)
}

// ReadAddress returns the address recorded for name in dir's contract-address.json.
func ReadAddress(dir, name string) (common.Address, error) {
	b, err := os.ReadFile(filepath.Join(dir, AddressFile))
	if err != nil {
		return common.Address{}, err
	}

	addresses := map[string]string{}
	if err := json.Unmarshal(b, &addresses); err != nil {
		return common.Address{}, err
	}

	hex, ok := addresses[name]
	if !ok || !common.IsHexAddress(hex) {
		return common.Address{}, fmt.Errorf("artifact: no address for %s in %s", name, AddressFile)
	}
	return common.HexToAddress(hex), nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it
// into place.
func writeFileAtomic(dir, name string, data []byte) error {
	f, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
