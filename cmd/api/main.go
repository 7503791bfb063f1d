package main

import (
	"context"
	"database/sql"
	"errors"
	"expvar"
	"flag"
	"io/fs"
	"math/big"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/data"
	"github.com/myk4040okothogodo/movienft/internal/jsonlog"
	"github.com/myk4040okothogodo/movienft/internal/mailer"
)

const version = "1.0.0"

// config holds all the configuration settings for the application. Settings are
// read from command-line flags, with secrets defaulting to environment variables.
type config struct {
	port int
	env  string

	// Connection pool settings for the display cache.
	db struct {
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  string
	}

	// The node, contract and service wallet. privateKey and keystore are
	// alternatives; with neither set the service is read-only.
	eth struct {
		rpc        string
		chainID    int64
		contract   string
		privateKey string
		keystore   string
		passphrase string
		txTimeout  time.Duration
	}

	// Per-client requests-per-second and burst, and a switch to turn limiting off.
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}

	// Mail server used for transaction receipts.
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}

	// Where receipts go. Empty disables email.
	notify struct {
		email string
	}

	cors struct {
		trustedOrigins []string
	}

	// bcrypt hash of the key mutating requests must present.
	auth struct {
		operatorKeyHash string
	}

	// How often the cache is re-read from the chain in the background.
	sync struct {
		interval time.Duration
	}

	// Built frontend served under /app/, if set.
	staticDir string
}

// chainClient is the contract surface the handlers use. *chain.Client implements it.
type chainClient interface {
	Account() (common.Address, error)
	Balance(ctx context.Context) (*big.Int, error)
	ContractAddress() common.Address
	ContractABI() string
	Mint(ctx context.Context, p chain.MintParams) (*chain.Receipt, error)
	MintTokenURI(ctx context.Context, recipient common.Address, tokenURI string) (*chain.Receipt, error)
	BuyShares(ctx context.Context, tokenID, amount int64) (*chain.Receipt, error)
	Burn(ctx context.Context, tokenID int64) (*chain.Receipt, error)
	OwnerOf(ctx context.Context, tokenID int64) (common.Address, error)
	Movies(ctx context.Context) ([]*data.Movie, error)
}

// application holds the dependencies for the HTTP handlers, helpers, and middleware.
type application struct {
	config config
	logger *jsonlog.Logger
	models data.Models
	chain  chainClient
	mailer mailer.Mailer
	wg     sync.WaitGroup

	// syncMu stops an older chain snapshot overwriting a newer one.
	syncMu sync.Mutex
}

func main() {
	// Messages at or above INFO go to stdout as JSON.
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// Values from a .env file fill in variables that aren't already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.PrintFatal(err, nil)
	}

	var cfg config

	// The PORT environment variable, when set, replaces the default port.
	flag.IntVar(&cfg.port, "port", envInt("PORT", 4000), "API server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|staging|production)")

	// The DSN comes from the environment unless given on the command line.
	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("MOVIENFT_DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.db.maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")

	// Defaults point at a local Hardhat node and its first deployment.
	flag.StringVar(&cfg.eth.rpc, "eth-rpc", envString("MOVIENFT_ETH_RPC", "http://localhost:8545"), "Ethereum JSON-RPC endpoint")
	flag.Int64Var(&cfg.eth.chainID, "eth-chain-id", 31337, "Ethereum chain id (31337 is the Hardhat default)")
	flag.StringVar(&cfg.eth.contract, "contract", envString("MOVIENFT_CONTRACT", "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"), "Deployed MovieNFT contract address")
	flag.StringVar(&cfg.eth.privateKey, "private-key", os.Getenv("MOVIENFT_PRIVATE_KEY"), "Hex private key of the service wallet")
	flag.StringVar(&cfg.eth.keystore, "keystore", os.Getenv("MOVIENFT_KEYSTORE"), "Path to a JSON keystore for the service wallet")
	flag.StringVar(&cfg.eth.passphrase, "keystore-passphrase", os.Getenv("MOVIENFT_KEYSTORE_PASSWORD"), "Keystore passphrase")
	flag.DurationVar(&cfg.eth.txTimeout, "tx-timeout", 2*time.Minute, "Maximum time to wait for a transaction to be mined")

	// Rate limiting is on unless -limiter-enabled=false.
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "127.0.0.1", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 1025, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("MOVIENFT_SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("MOVIENFT_SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "MovieNFT <no-reply@movienft.local>", "SMTP sender")
	flag.StringVar(&cfg.notify.email, "notify-email", os.Getenv("MOVIENFT_NOTIFY_EMAIL"), "Send transaction receipts to this address (empty disables)")

	// strings.Fields splits on whitespace, and returns an empty slice when the flag
	// is missing or blank.
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.cors.trustedOrigins = strings.Fields(val)
		return nil
	})

	flag.StringVar(&cfg.auth.operatorKeyHash, "operator-key-hash", os.Getenv("MOVIENFT_OPERATOR_KEY_HASH"), "bcrypt hash of the operator key required for mutating requests (empty leaves them open)")
	flag.DurationVar(&cfg.sync.interval, "sync-interval", time.Minute, "Interval between background cache syncs (0 disables)")
	flag.StringVar(&cfg.staticDir, "static-dir", "", "Serve a built frontend from this directory under /app/")

	flag.Parse()

	// Fail at startup rather than on the first contract call.
	if !common.IsHexAddress(cfg.eth.contract) {
		logger.PrintFatal(errors.New("invalid -contract address: "+cfg.eth.contract), nil)
	}

	// Open the cache's connection pool. Any error here is fatal.
	db, err := openDB(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Close the pool when main() returns.
	defer db.Close()

	logger.PrintInfo("database connection pool established", nil)

	// Dial only sets up the client; the node is not contacted until the first call.
	eth, err := ethclient.Dial(cfg.eth.rpc)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer eth.Close()

	// nil opts with a nil error means no wallet was configured.
	opts, err := chain.LoadSigner(cfg.eth.privateKey, cfg.eth.keystore, cfg.eth.passphrase, big.NewInt(cfg.eth.chainID))
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	client, err := chain.New(eth, common.HexToAddress(cfg.eth.contract), opts, cfg.eth.txTimeout)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	// Log which account transactions will come from, if any.
	if account, err := client.Account(); err != nil {
		logger.PrintInfo("no wallet configured, running read-only", nil)
	} else {
		logger.PrintInfo("wallet connected", map[string]string{"account": account.Hex()})
	}

	// Publish the version, goroutine count, pool stats and current time on
	// /debug/vars.
	expvar.NewString("version").Set(version)

	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))

	expvar.Publish("database", expvar.Func(func() interface{} {
		return db.Stats()
	}))

	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))

	// Everything the handlers need.
	app := &application{
		config: cfg,
		logger: logger,
		models: data.NewModels(db),
		chain:  client,
		mailer: mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
	}

	// serve blocks until the server has shut down.
	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

func openDB(cfg config) (*sql.DB, error) {
	// sql.Open creates an empty pool; no connection is made yet.
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	// Passing a value less than or equal to 0 means there is no limit.
	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)

	// Idle connections are closed after maxIdleTime.
	duration, err := time.ParseDuration(cfg.db.maxIdleTime)
	if err != nil {
		return nil, err
	}

	db.SetConnMaxIdleTime(duration)

	// Make sure the database answers within five seconds.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// envString returns the value of key, or fallback when it is unset or empty.
func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
