package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/myk4040okothogodo/movienft/internal/validator"
)

// mintTokenHandler proxies {"recipient", "tokenURI"} to the contract's mintNFT and
// answers in plain text.
func (app *application) mintTokenHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Recipient string `json:"recipient"`
		TokenURI  string `json:"tokenURI"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.logError(r, err)
		app.plainTextResponse(w, http.StatusBadRequest, "Error minting NFT")
		return
	}

	v := validator.New()
	v.Check(validator.Matches(input.Recipient, validator.EthAddressRX), "recipient", "must be a 0x-prefixed hex address")
	v.Check(input.TokenURI != "", "tokenURI", "must be provided")

	if !v.Valid() {
		app.logger.PrintError(errors.New("invalid mint request"), v.Errors)
		app.plainTextResponse(w, http.StatusBadRequest, "Error minting NFT")
		return
	}

	receipt, err := app.chain.MintTokenURI(txContext(), common.HexToAddress(input.Recipient), input.TokenURI)
	if err != nil {
		app.logError(r, err)
		app.plainTextResponse(w, http.StatusInternalServerError, "Error minting NFT")
		return
	}

	app.logger.PrintInfo("token minted", map[string]string{
		"token_id":  strconv.FormatInt(receipt.TokenID, 10),
		"recipient": input.Recipient,
		"tx":        receipt.TxHash.Hex(),
	})

	app.resync(txContext(), "mint token uri")

	app.plainTextResponse(w, http.StatusOK, "NFT Minted Successfully!")
}

func (app *application) plainTextResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, message)
}
