package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/data"
	"github.com/myk4040okothogodo/movienft/internal/jsonlog"
)

var (
	testAccount  = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	testContract = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

// fakeChain keeps token state in memory and answers like the contract would.
type fakeChain struct {
	mu       sync.Mutex
	readOnly bool
	failWith error
	movies   map[int64]*data.Movie
	nextID   int64
	txCount  int

	// moviesErr makes Movies fail, as a node that can't be read would.
	moviesErr error
	// stall makes Movies block until its context is done.
	stall bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{movies: make(map[int64]*data.Movie), nextID: 1}
}

func (f *fakeChain) receipt(tokenID int64, value *big.Int) *chain.Receipt {
	f.txCount++
	return &chain.Receipt{
		TxHash:      common.BigToHash(big.NewInt(int64(f.txCount))),
		BlockNumber: uint64(f.txCount),
		TokenID:     tokenID,
		Value:       data.NewWei(value),
	}
}

func (f *fakeChain) Account() (common.Address, error) {
	if f.readOnly {
		return common.Address{}, chain.ErrNoWallet
	}
	return testAccount, nil
}

func (f *fakeChain) Balance(ctx context.Context) (*big.Int, error) {
	if f.readOnly {
		return nil, chain.ErrNoWallet
	}
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeChain) ContractAddress() common.Address { return testContract }

func (f *fakeChain) ContractABI() string { return `[]` }

func (f *fakeChain) check() error {
	if f.readOnly {
		return chain.ErrNoWallet
	}
	return f.failWith
}

func (f *fakeChain) Mint(ctx context.Context, p chain.MintParams) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(); err != nil {
		return nil, err
	}

	id := f.nextID
	f.nextID++
	f.movies[id] = &data.Movie{
		TokenID: id,
		Name:    p.Name,
		Year:    p.Year,
		Genre:   p.Genre,
		Poster:  p.Poster,
		Shares:  p.Shares,
		Price:   data.NewWei(p.Price),
		Owner:   testAccount.Hex(),
	}
	return f.receipt(id, nil), nil
}

func (f *fakeChain) MintTokenURI(ctx context.Context, recipient common.Address, tokenURI string) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(); err != nil {
		return nil, err
	}

	id := f.nextID
	f.nextID++
	f.movies[id] = &data.Movie{TokenID: id, TokenURI: tokenURI, Owner: recipient.Hex()}
	return f.receipt(id, nil), nil
}

func (f *fakeChain) BuyShares(ctx context.Context, tokenID, amount int64) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(); err != nil {
		return nil, err
	}

	movie, ok := f.movies[tokenID]
	if !ok {
		return nil, chain.ErrNotFound
	}
	if amount > movie.Shares {
		return nil, chain.ErrSoldOut
	}
	movie.Shares -= amount

	cost := new(big.Int).Mul(movie.Price.BigInt(), big.NewInt(amount))
	return f.receipt(tokenID, cost), nil
}

func (f *fakeChain) Burn(ctx context.Context, tokenID int64) (*chain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.check(); err != nil {
		return nil, err
	}

	if _, ok := f.movies[tokenID]; !ok {
		return nil, chain.ErrNotFound
	}
	delete(f.movies, tokenID)
	return f.receipt(tokenID, nil), nil
}

func (f *fakeChain) OwnerOf(ctx context.Context, tokenID int64) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	movie, ok := f.movies[tokenID]
	if !ok {
		return common.Address{}, chain.ErrNotFound
	}
	return common.HexToAddress(movie.Owner), nil
}

func (f *fakeChain) Movies(ctx context.Context) ([]*data.Movie, error) {
	if f.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.moviesErr != nil {
		return nil, f.moviesErr
	}

	movies := make([]*data.Movie, 0, len(f.movies))
	for _, movie := range f.movies {
		cp := *movie
		cp.Price = data.NewWei(movie.Price.BigInt())
		movies = append(movies, &cp)
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].TokenID < movies[j].TokenID })
	return movies, nil
}

func newTestApplication(t *testing.T) (*application, *fakeChain) {
	t.Helper()

	var cfg config
	cfg.env = "testing"
	cfg.eth.chainID = 31337

	fc := newFakeChain()

	app := &application{
		config: cfg,
		logger: jsonlog.New(io.Discard, jsonlog.LevelInfo),
		models: data.NewMockModels(),
		chain:  fc,
	}
	return app, fc
}

type testResponse struct {
	status int
	header http.Header
	body   string
}

func (app *application) do(t *testing.T, method, path string, body interface{}, headers map[string]string) testResponse {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		js, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(js)
	}

	req := httptest.NewRequest(method, path, rd)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, req)

	return testResponse{status: rr.Code, header: rr.Header(), body: rr.Body.String()}
}

func decode(t *testing.T, res testResponse, dst interface{}) {
	t.Helper()

	err := json.Unmarshal([]byte(res.body), dst)
	if err != nil {
		t.Fatalf("decoding %q: %v", res.body, err)
	}
}

func validMovie() map[string]interface{} {
	return map[string]interface{}{
		"name":   "Metropolis",
		"year":   1927,
		"genre":  "sci-fi",
		"poster": "https://example.com/metropolis.jpg",
		"shares": 100,
		"price":  "250",
	}
}
