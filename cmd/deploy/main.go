// deploy publishes the MovieNFT contract from its Hardhat artifact and copies the
// deployed address and ABI into the frontend.
//
// Usage:
//   deploy [--rpc <endpoint>] [--private-key <hex> | --keystore <path>] [--artifact <path>] [--frontend <dir>]
//   deploy info [--contract <address>]
//   deploy hash-key <operator key>
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"
	"github.com/myk4040okothogodo/movienft/internal/artifact"
	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/contract"
	"golang.org/x/crypto/bcrypt"
	cli "gopkg.in/urfave/cli.v1"
)

const contractName = "MovieNFT"

var (
	app = cli.NewApp()

	rpcFlag = cli.StringFlag{
		Name:   "rpc",
		Usage:  "Ethereum JSON-RPC endpoint",
		Value:  "http://localhost:8545",
		EnvVar: "MOVIENFT_ETH_RPC",
	}
	chainIDFlag = cli.Int64Flag{
		Name:  "chain-id",
		Usage: "Chain id to sign for (0 asks the node)",
	}
	privateKeyFlag = cli.StringFlag{
		Name:   "private-key",
		Usage:  "Hex private key of the deployer",
		EnvVar: "MOVIENFT_PRIVATE_KEY",
	}
	keystoreFlag = cli.StringFlag{
		Name:   "keystore",
		Usage:  "Path to the deployer's JSON keystore",
		EnvVar: "MOVIENFT_KEYSTORE",
	}
	passphraseFlag = cli.StringFlag{
		Name:   "keystore-passphrase",
		Usage:  "Keystore passphrase",
		EnvVar: "MOVIENFT_KEYSTORE_PASSWORD",
	}
	artifactFlag = cli.StringFlag{
		Name:  "artifact",
		Usage: "Hardhat artifact to deploy",
		Value: artifact.DefaultPath(".", contractName),
	}
	frontendFlag = cli.StringFlag{
		Name:  "frontend",
		Usage: "Directory the frontend loads contract-address.json and the ABI from",
		Value: "client/src/contracts",
	}
	contractFlag = cli.StringFlag{
		Name:   "contract",
		Usage:  "Deployed MovieNFT address (defaults to the one exported to --frontend)",
		EnvVar: "MOVIENFT_CONTRACT",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "How long to wait for the deployment to be mined",
		Value: 2 * time.Minute,
	}
)

func init() {
	app.Name = "deploy"
	app.Usage = "Deploy the MovieNFT contract and export it to the frontend"
	app.Version = "1.0.0"
	app.Action = deployCmd
	app.Flags = []cli.Flag{
		rpcFlag,
		chainIDFlag,
		privateKeyFlag,
		keystoreFlag,
		passphraseFlag,
		artifactFlag,
		frontendFlag,
		timeoutFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "Print the deployed contract's address, supply and the deployer balance",
			Action: infoCmd,
			Flags: []cli.Flag{
				rpcFlag,
				chainIDFlag,
				privateKeyFlag,
				keystoreFlag,
				passphraseFlag,
				frontendFlag,
				contractFlag,
			},
		},
		{
			Name:      "hash-key",
			Usage:     "Print the bcrypt hash of an operator key for the API's -operator-key-hash",
			ArgsUsage: "<operator key>",
			Action:    hashKeyCmd,
		},
	}
	app.Before = func(ctx *cli.Context) error {
		log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func deployCmd(ctx *cli.Context) error {
	if err := deploy(ctx); err != nil {
		return cli.NewExitError(fmt.Sprintf("Error in deployment: %v", err), 1)
	}
	return nil
}

func deploy(ctx *cli.Context) error {
	a, err := artifact.Load(ctx.String(artifactFlag.Name))
	if err != nil {
		return err
	}
	parsed, err := a.ParsedABI()
	if err != nil {
		return err
	}
	code, err := a.Code()
	if err != nil {
		return err
	}

	client, err := ethclient.Dial(ctx.String(rpcFlag.Name))
	if err != nil {
		return err
	}
	defer client.Close()

	timeout, cancel := context.WithTimeout(context.Background(), ctx.Duration(timeoutFlag.Name))
	defer cancel()

	opts, err := signer(timeout, ctx, client)
	if err != nil {
		return err
	}
	if opts == nil {
		return errors.New("no deployer key: set --private-key or --keystore")
	}
	opts.Context = timeout

	balance, err := client.BalanceAt(timeout, opts.From, nil)
	if err != nil {
		return err
	}
	log.Info("Deploying contracts with the account", "account", opts.From, "balance", balance)

	addr, tx, _, err := bind.DeployContract(opts, parsed, code, client)
	if err != nil {
		return chain.Classify(err)
	}
	log.Info("Deployment submitted", "tx", tx.Hash(), "nonce", tx.Nonce())

	if _, err := bind.WaitDeployed(timeout, client, tx); err != nil {
		return err
	}
	log.Info(contractName+" deployed to", "address", addr)

	dir := ctx.String(frontendFlag.Name)
	if err := artifact.Export(dir, a, addr); err != nil {
		return err
	}
	log.Info("Exported contract to frontend", "dir", dir, "files", artifact.AddressFile+", "+a.ContractName+".json")

	return nil
}

func infoCmd(ctx *cli.Context) error {
	addr, err := contractAddress(ctx.String(contractFlag.Name), ctx.String(frontendFlag.Name))
	if err != nil {
		return err
	}

	client, err := ethclient.Dial(ctx.String(rpcFlag.Name))
	if err != nil {
		return err
	}
	defer client.Close()

	timeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	code, err := client.CodeAt(timeout, addr, nil)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return fmt.Errorf("no contract code at %s", addr.Hex())
	}

	nft, err := contract.NewMovieNFT(addr, client)
	if err != nil {
		return err
	}
	supply, err := nft.TotalSupply(&bind.CallOpts{Context: timeout})
	if err != nil {
		return chain.Classify(err)
	}

	log.Info(contractName+" contract info", "address", addr, "rpc", ctx.String(rpcFlag.Name), "totalSupply", supply)

	opts, err := signer(timeout, ctx, client)
	if err != nil {
		return err
	}
	if opts != nil {
		balance, err := client.BalanceAt(timeout, opts.From, nil)
		if err != nil {
			return err
		}
		log.Info("Deployer", "account", opts.From, "balance", balance)
	}

	return nil
}

func hashKeyCmd(ctx *cli.Context) error {
	hash, err := hashKey(ctx.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func hashKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("an operator key argument is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// signer loads the deployer key. A zero --chain-id is filled in from the node.
func signer(timeout context.Context, ctx *cli.Context, client *ethclient.Client) (*bind.TransactOpts, error) {
	chainID := big.NewInt(ctx.Int64(chainIDFlag.Name))
	if chainID.Sign() == 0 {
		id, err := client.ChainID(timeout)
		if err != nil {
			return nil, err
		}
		chainID = id
	}
	return chain.LoadSigner(ctx.String(privateKeyFlag.Name), ctx.String(keystoreFlag.Name), ctx.String(passphraseFlag.Name), chainID)
}

func contractAddress(flagValue, frontendDir string) (common.Address, error) {
	if flagValue != "" {
		if !common.IsHexAddress(flagValue) {
			return common.Address{}, fmt.Errorf("invalid contract address %q", flagValue)
		}
		return common.HexToAddress(flagValue), nil
	}
	return artifact.ReadAddress(frontendDir, contractName)
}
