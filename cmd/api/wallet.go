package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/data"
)

// showWalletHandler is the server side of "connect wallet": it reports the account
// transactions will be sent from.
func (app *application) showWalletHandler(w http.ResponseWriter, r *http.Request) {
	account, err := app.chain.Account()
	if err != nil {
		switch {
		case errors.Is(err, chain.ErrNoWallet):
			app.noWalletResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	balance, err := app.chain.Balance(r.Context())
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	wallet := map[string]interface{}{
		"account": account.Hex(),
		"balance": data.NewWei(balance),
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"wallet": wallet}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showContractHandler publishes the contract address and ABI so a browser wallet can
// build its own transactions.
func (app *application) showContractHandler(w http.ResponseWriter, r *http.Request) {
	contract := map[string]interface{}{
		"address":  app.chain.ContractAddress().Hex(),
		"chain_id": app.config.eth.chainID,
		"abi":      json.RawMessage(app.chain.ContractABI()),
	}

	err := app.writeJSON(w, http.StatusOK, envelope{"contract": contract}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
