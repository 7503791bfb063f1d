// Package chain talks to the deployed MovieNFT contract on behalf of the API: it
// holds the service wallet, submits transactions, waits for them to be mined and
// reads movies back into the shape the display cache stores.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/myk4040okothogodo/movienft/internal/contract"
	"github.com/myk4040okothogodo/movienft/internal/data"
)

// Backend is the subset of an Ethereum client the service uses. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// Receipt describes a mined transaction.
type Receipt struct {
	TxHash      common.Hash `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`
	TokenID     int64       `json:"token_id"`
	Value       data.Wei    `json:"value"`
}

// MintParams are the movie fields passed to the contract's mint.
type MintParams struct {
	Name   string
	Year   int32
	Genre  string
	Poster string
	Shares int64
	Price  *big.Int
}

type Client struct {
	backend   Backend
	nft       *contract.MovieNFT
	opts      *bind.TransactOpts
	txTimeout time.Duration

	// mu serialises submission so concurrent requests don't reuse a pending nonce.
	mu sync.Mutex
}

// New returns a Client bound to the contract at addr. opts may be nil, in which case
// every mutating call fails with ErrNoWallet.
func New(backend Backend, addr common.Address, opts *bind.TransactOpts, txTimeout time.Duration) (*Client, error) {
	nft, err := contract.NewMovieNFT(addr, backend)
	if err != nil {
		return nil, err
	}
	if txTimeout <= 0 {
		txTimeout = 2 * time.Minute
	}
	return &Client{
		backend:   backend,
		nft:       nft,
		opts:      opts,
		txTimeout: txTimeout,
	}, nil
}

// Account returns the address of the service wallet.
func (c *Client) Account() (common.Address, error) {
	if c.opts == nil {
		return common.Address{}, ErrNoWallet
	}
	return c.opts.From, nil
}

func (c *Client) Balance(ctx context.Context) (*big.Int, error) {
	account, err := c.Account()
	if err != nil {
		return nil, err
	}
	balance, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, Classify(err)
	}
	return balance, nil
}

func (c *Client) ContractAddress() common.Address {
	return c.nft.Address()
}

// ContractABI returns the ABI JSON the frontend needs to build its own calls.
func (c *Client) ContractABI() string {
	return contract.MovieNFTABI
}

// Mint submits a mint, waits for it to be mined and returns the new token id.
func (c *Client) Mint(ctx context.Context, p MintParams) (*Receipt, error) {
	price := p.Price
	if price == nil {
		price = new(big.Int)
	}

	receipt, err := c.transact(ctx, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.nft.Mint(opts, p.Name, big.NewInt(int64(p.Year)), p.Genre, p.Poster, big.NewInt(p.Shares), price)
	})
	if err != nil {
		return nil, err
	}
	return c.mintedReceipt(receipt)
}

// MintTokenURI mints a bare token with a metadata URI to recipient.
func (c *Client) MintTokenURI(ctx context.Context, recipient common.Address, tokenURI string) (*Receipt, error) {
	receipt, err := c.transact(ctx, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.nft.MintNFT(opts, recipient, tokenURI)
	})
	if err != nil {
		return nil, err
	}
	return c.mintedReceipt(receipt)
}

// BuyShares pays amount times the movie's base price for amount shares.
func (c *Client) BuyShares(ctx context.Context, tokenID, amount int64) (*Receipt, error) {
	if c.opts == nil {
		return nil, ErrNoWallet
	}

	details, err := c.nft.GetMovieDetails(&bind.CallOpts{Context: ctx}, big.NewInt(tokenID))
	if err != nil {
		return nil, Classify(err)
	}
	cost := new(big.Int).Mul(details.Price, big.NewInt(amount))

	receipt, err := c.transact(ctx, cost, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.nft.BuyShares(opts, big.NewInt(tokenID), big.NewInt(amount))
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		TokenID:     tokenID,
		Value:       data.NewWei(cost),
	}, nil
}

func (c *Client) Burn(ctx context.Context, tokenID int64) (*Receipt, error) {
	receipt, err := c.transact(ctx, nil, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return c.nft.Burn(opts, big.NewInt(tokenID))
	})
	if err != nil {
		return nil, err
	}
	return &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		TokenID:     tokenID,
	}, nil
}

func (c *Client) OwnerOf(ctx context.Context, tokenID int64) (common.Address, error) {
	owner, err := c.nft.OwnerOf(&bind.CallOpts{Context: ctx}, big.NewInt(tokenID))
	if err != nil {
		return common.Address{}, Classify(err)
	}
	return owner, nil
}

// Movie reads one token's details and owner.
func (c *Client) Movie(ctx context.Context, tokenID int64) (*data.Movie, error) {
	return c.movieAt(&bind.CallOpts{Context: ctx}, tokenID)
}

func (c *Client) movieAt(opts *bind.CallOpts, tokenID int64) (*data.Movie, error) {
	id := big.NewInt(tokenID)

	details, err := c.nft.GetMovieDetails(opts, id)
	if err != nil {
		return nil, Classify(err)
	}
	owner, err := c.nft.OwnerOf(opts, id)
	if err != nil {
		return nil, Classify(err)
	}

	movie := &data.Movie{
		TokenID: tokenID,
		Name:    details.Name,
		Year:    int32(details.Year.Int64()),
		Genre:   details.Genre,
		Poster:  details.Poster,
		Shares:  details.Shares.Int64(),
		Price:   data.NewWei(details.Price),
		Owner:   owner.Hex(),
	}

	// Tokens minted through mintNFT carry a URI instead of movie details.
	if movie.Name == "" {
		uri, err := c.nft.TokenURI(opts, id)
		if err != nil {
			return nil, Classify(err)
		}
		movie.TokenURI = uri
	}

	return movie, nil
}

// Movies reads every live token. Burned tokens drop out of the enumeration. All
// calls are made against the same block so a burn mined mid-read can't shift the
// index.
func (c *Client) Movies(ctx context.Context) ([]*data.Movie, error) {
	head, err := c.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, Classify(err)
	}
	opts := &bind.CallOpts{Context: ctx, BlockNumber: head.Number}

	supply, err := c.nft.TotalSupply(opts)
	if err != nil {
		return nil, Classify(err)
	}

	movies := make([]*data.Movie, 0, supply.Int64())
	for i := int64(0); i < supply.Int64(); i++ {
		id, err := c.nft.TokenByIndex(opts, big.NewInt(i))
		if err != nil {
			return nil, Classify(err)
		}
		movie, err := c.movieAt(opts, id.Int64())
		if err != nil {
			return nil, fmt.Errorf("token %s: %w", id, err)
		}
		movies = append(movies, movie)
	}

	return movies, nil
}

func (c *Client) transact(ctx context.Context, value *big.Int, send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Receipt, error) {
	if c.opts == nil {
		return nil, ErrNoWallet
	}

	ctx, cancel := context.WithTimeout(ctx, c.txTimeout)
	defer cancel()

	opts := *c.opts
	opts.Context = ctx
	opts.Value = value

	c.mu.Lock()
	tx, err := send(&opts)
	c.mu.Unlock()
	if err != nil {
		return nil, Classify(err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, Classify(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s", ErrTxReverted, tx.Hash().Hex())
	}

	return receipt, nil
}

func (c *Client) mintedReceipt(receipt *types.Receipt) (*Receipt, error) {
	id, err := c.nft.MintedTokenID(receipt)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		TokenID:     id.Int64(),
	}, nil
}
