package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/myk4040okothogodo/movienft/internal/chain"
	"github.com/myk4040okothogodo/movienft/internal/data"
	"github.com/myk4040okothogodo/movienft/internal/validator"
)

// Once a transaction has been submitted it will be mined whether or not the client
// is still connected, so the wait is not tied to the request context.
func txContext() context.Context {
	return context.Background()
}

func (app *application) createMovieHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name   string   `json:"name"`
		Year   int32    `json:"year"`
		Genre  string   `json:"genre"`
		Poster string   `json:"poster"`
		Shares int64    `json:"shares"`
		Price  data.Wei `json:"price"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie := &data.Movie{
		Name:   input.Name,
		Year:   input.Year,
		Genre:  input.Genre,
		Poster: input.Poster,
		Shares: input.Shares,
		Price:  input.Price,
	}

	v := validator.New()

	if data.ValidateMovie(v, movie); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	receipt, err := app.chain.Mint(txContext(), chain.MintParams{
		Name:   movie.Name,
		Year:   movie.Year,
		Genre:  movie.Genre,
		Poster: movie.Poster,
		Shares: movie.Shares,
		Price:  movie.Price.BigInt(),
	})
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	app.logger.PrintInfo("movie minted", map[string]string{
		"token_id": strconv.FormatInt(receipt.TokenID, 10),
		"tx":       receipt.TxHash.Hex(),
	})

	app.resync(txContext(), "mint")

	movie.TokenID = receipt.TokenID
	if cached, err := app.models.Movies.Get(receipt.TokenID); err == nil {
		movie = cached
	}

	app.notify("movie_minted.tmpl", map[string]interface{}{
		"Movie":   movie,
		"Receipt": receipt,
	})

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/movies/%d", movie.TokenID))

	err = app.writeJSON(w, http.StatusCreated, envelope{"movie": movie, "receipt": receipt}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	movie, err := app.models.Movies.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"movie": movie}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showMovieOwnerHandler asks the contract directly rather than trusting the cache.
func (app *application) showMovieOwnerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	owner, err := app.chain.OwnerOf(r.Context(), id)
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token_id": id, "owner": owner.Hex()}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listMoviesHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name  string
		Genre string
		data.Filters
	}

	v := validator.New()

	qs := r.URL.Query()

	input.Name = strings.TrimSpace(app.readString(qs, "name", ""))
	input.Genre = app.readString(qs, "genre", "")

	input.Filters.Page = app.readInt(qs, "page", 1, v)
	input.Filters.PageSize = app.readInt(qs, "page_size", 20, v)

	input.Filters.Sort = app.readString(qs, "sort", "token_id")
	input.Filters.SortSafelist = []string{"token_id", "name", "year", "price", "-token_id", "-name", "-year", "-price"}

	if data.ValidateFilters(v, input.Filters); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	movies, metadata, err := app.models.Movies.GetAll(input.Name, input.Genre, input.Filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"movies": movies, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) buySharesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Amount int64 `json:"amount"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Amount > 0, "amount", "must be greater than zero")
	v.Check(input.Amount <= data.MaxShares, "amount", fmt.Sprintf("must not be more than %d", data.MaxShares))

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	receipt, err := app.chain.BuyShares(txContext(), id, input.Amount)
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	app.logger.PrintInfo("shares purchased", map[string]string{
		"token_id": strconv.FormatInt(id, 10),
		"amount":   strconv.FormatInt(input.Amount, 10),
		"value":    receipt.Value.String(),
		"tx":       receipt.TxHash.Hex(),
	})

	app.resync(txContext(), "buy shares")

	app.notify("shares_purchased.tmpl", map[string]interface{}{
		"Amount":  input.Amount,
		"Receipt": receipt,
	})

	env := envelope{"receipt": receipt}
	if movie, err := app.models.Movies.Get(id); err == nil {
		env["movie"] = movie
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) burnMovieHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	receipt, err := app.chain.Burn(txContext(), id)
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	app.logger.PrintInfo("movie burned", map[string]string{
		"token_id": strconv.FormatInt(id, 10),
		"tx":       receipt.TxHash.Hex(),
	})

	app.resync(txContext(), "burn")

	// The burn is final, so drop the row even if the sync above failed.
	err = app.models.Movies.Delete(id)
	if err != nil && !errors.Is(err, data.ErrRecordNotFound) {
		app.logError(r, err)
	}

	app.notify("movie_burned.tmpl", map[string]interface{}{
		"Receipt": receipt,
	})

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "movie successfully burned", "receipt": receipt}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) syncMoviesHandler(w http.ResponseWriter, r *http.Request) {
	n, err := app.syncMovies(r.Context())
	if err != nil {
		app.chainErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"synced": n}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// notify emails a receipt in the background when -notify-email is set.
func (app *application) notify(templateFile string, tmplData interface{}) {
	if app.config.notify.email == "" {
		return
	}

	app.background(func() {
		err := app.mailer.Send(app.config.notify.email, templateFile, tmplData)
		if err != nil {
			app.logger.PrintError(err, map[string]string{"template": templateFile})
		}
	})
}
