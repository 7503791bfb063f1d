package main

import (
	"net/http"
)

func (app *application) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	_, walletErr := app.chain.Account()

	env := envelope{
		"status": "available",
		"system_info": map[string]interface{}{
			"environment": app.config.env,
			"version":     version,
			"chain_id":    app.config.eth.chainID,
			"contract":    app.chain.ContractAddress().Hex(),
			"read_only":   walletErr != nil,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
