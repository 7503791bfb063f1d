package main

import (
	"errors"
	"net/http"

	"github.com/myk4040okothogodo/movienft/internal/chain"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
	})
}

// errorResponse sends a JSON-formatted error message with the given status code.
func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := envelope{"error": message}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := "the " + r.Method + " method is not supported for this resource"
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")

	message := "invalid or missing operator key"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")

	message := "you must present the operator key to modify movies"
	app.errorResponse(w, r, http.StatusUnauthorized, message)
}

func (app *application) noWalletResponse(w http.ResponseWriter, r *http.Request) {
	message := "no Ethereum wallet is configured for this service"
	app.errorResponse(w, r, http.StatusServiceUnavailable, message)
}

// chainErrorResponse maps a classified chain error onto a response. Anything that
// isn't a known failure is treated as the node misbehaving.
func (app *application) chainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chain.ErrNoWallet):
		app.noWalletResponse(w, r)
	case errors.Is(err, chain.ErrNotOwner):
		app.errorResponse(w, r, http.StatusForbidden, "the service wallet is not permitted to modify this token")
	case errors.Is(err, chain.ErrInsufficientFunds):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, "insufficient funds to complete the transaction")
	case errors.Is(err, chain.ErrSoldOut):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, "not enough shares available")
	case errors.Is(err, chain.ErrNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, chain.ErrTxReverted):
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusUnprocessableEntity, "the transaction was reverted by the contract")
	default:
		app.logError(r, err)
		app.errorResponse(w, r, http.StatusBadGateway, "the blockchain node could not process the request")
	}
}
