package main

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthcheckHandler)

	router.HandlerFunc(http.MethodGet, "/v1/wallet", app.showWalletHandler)
	router.HandlerFunc(http.MethodGet, "/v1/contract", app.showContractHandler)

	router.HandlerFunc(http.MethodGet, "/v1/movies", app.listMoviesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/movies", app.requireOperator(app.createMovieHandler))
	router.HandlerFunc(http.MethodPost, "/v1/sync", app.requireOperator(app.syncMoviesHandler))
	router.HandlerFunc(http.MethodGet, "/v1/movies/:id", app.showMovieHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/movies/:id", app.requireOperator(app.burnMovieHandler))
	router.HandlerFunc(http.MethodGet, "/v1/movies/:id/owner", app.showMovieOwnerHandler)
	router.HandlerFunc(http.MethodPost, "/v1/movies/:id/shares", app.requireOperator(app.buySharesHandler))

	router.HandlerFunc(http.MethodPost, "/mint", app.requireOperator(app.mintTokenHandler))

	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	if app.config.staticDir != "" {
		router.ServeFiles("/app/*filepath", http.Dir(app.config.staticDir))
	}

	return app.metrics(app.recoverPanic(app.enableCORS(app.rateLimit(app.authenticate(router)))))
}
