// Package contract provides Go bindings for the MovieNFT contract: minting movies,
// buying fractional shares, burning, and reading movie details back.
package contract

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrNoMintEvent is returned when a receipt carries no Transfer from the zero address.
var ErrNoMintEvent = errors.New("contract: no mint Transfer event in receipt")

// MovieNFT is a wrapper around the on-chain MovieNFT contract.
type MovieNFT struct {
	abi      abi.ABI
	address  common.Address
	contract *bind.BoundContract
}

// ParsedABI returns the parsed MovieNFT ABI.
func ParsedABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(MovieNFTABI))
}

// NewMovieNFT binds to an already-deployed MovieNFT contract.
func NewMovieNFT(addr common.Address, backend bind.ContractBackend) (*MovieNFT, error) {
	parsed, err := ParsedABI()
	if err != nil {
		return nil, err
	}
	return &MovieNFT{
		abi:      parsed,
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, backend, backend, backend),
	}, nil
}

func (m *MovieNFT) Address() common.Address { return m.address }

// Mint creates a new movie token owned by the sender.
func (m *MovieNFT) Mint(opts *bind.TransactOpts, name string, year *big.Int, genre, poster string, shares, price *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "mint", name, year, genre, poster, shares, price)
}

// MintNFT mints a bare token with a metadata URI to recipient.
func (m *MovieNFT) MintNFT(opts *bind.TransactOpts, recipient common.Address, tokenURI string) (*types.Transaction, error) {
	return m.contract.Transact(opts, "mintNFT", recipient, tokenURI)
}

// BuyShares purchases amount shares of a movie. opts.Value must cover amount * price.
func (m *MovieNFT) BuyShares(opts *bind.TransactOpts, tokenID, amount *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "buyShares", tokenID, amount)
}

// Burn destroys a movie token. Only the owner may burn.
func (m *MovieNFT) Burn(opts *bind.TransactOpts, tokenID *big.Int) (*types.Transaction, error) {
	return m.contract.Transact(opts, "burn", tokenID)
}

// MovieDetails is the record returned by getMovieDetails.
type MovieDetails struct {
	Name   string
	Year   *big.Int
	Genre  string
	Poster string
	Shares *big.Int
	Price  *big.Int
}

func (m *MovieNFT) GetMovieDetails(opts *bind.CallOpts, tokenID *big.Int) (*MovieDetails, error) {
	var out []interface{}
	err := m.contract.Call(opts, &out, "getMovieDetails", tokenID)
	if err != nil {
		return nil, err
	}
	return &MovieDetails{
		Name:   *abi.ConvertType(out[0], new(string)).(*string),
		Year:   *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		Genre:  *abi.ConvertType(out[2], new(string)).(*string),
		Poster: *abi.ConvertType(out[3], new(string)).(*string),
		Shares: *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
		Price:  *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
	}, nil
}

func (m *MovieNFT) OwnerOf(opts *bind.CallOpts, tokenID *big.Int) (common.Address, error) {
	var out []interface{}
	err := m.contract.Call(opts, &out, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (m *MovieNFT) TokenURI(opts *bind.CallOpts, tokenID *big.Int) (string, error) {
	var out []interface{}
	err := m.contract.Call(opts, &out, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (m *MovieNFT) TotalSupply(opts *bind.CallOpts) (*big.Int, error) {
	return m.callUint(opts, "totalSupply")
}

func (m *MovieNFT) TokenByIndex(opts *bind.CallOpts, index *big.Int) (*big.Int, error) {
	return m.callUint(opts, "tokenByIndex", index)
}

func (m *MovieNFT) callUint(opts *bind.CallOpts, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	err := m.contract.Call(opts, &out, method, params...)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// TransferEvent is the ERC-721 Transfer log.
type TransferEvent struct {
	From    common.Address
	To      common.Address
	TokenId *big.Int
	Raw     types.Log
}

// ParseTransfer decodes a Transfer log emitted by this contract.
func (m *MovieNFT) ParseTransfer(log types.Log) (*TransferEvent, error) {
	event := new(TransferEvent)
	if err := m.contract.UnpackLog(event, "Transfer", log); err != nil {
		return nil, err
	}
	event.Raw = log
	return event, nil
}

// MintedTokenID finds the token id assigned by a mint from the receipt's Transfer
// event (from the zero address).
func (m *MovieNFT) MintedTokenID(receipt *types.Receipt) (*big.Int, error) {
	transferID := m.abi.Events["Transfer"].ID
	for _, log := range receipt.Logs {
		if log.Address != m.address || len(log.Topics) != 4 || log.Topics[0] != transferID {
			continue
		}
		event, err := m.ParseTransfer(*log)
		if err != nil {
			return nil, err
		}
		if event.From == (common.Address{}) {
			return event.TokenId, nil
		}
	}
	return nil, ErrNoMintEvent
}
