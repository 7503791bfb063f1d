package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func (app *application) serve() error {
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", app.config.port),
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// Mutating requests wait for the transaction to be mined.
		WriteTimeout: app.config.eth.txTimeout + 30*time.Second,
		ErrorLog:     log.New(app.logger, "", 0),
	}

	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()

	if app.config.sync.interval > 0 {
		app.wg.Add(1)
		go func() {
			defer app.wg.Done()
			app.runSyncer(syncCtx, app.config.sync.interval)
		}()
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.PrintInfo("shutting down server", map[string]string{
			"signal": s.String(),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		app.logger.PrintInfo("completing background tasks", map[string]string{
			"addr": srv.Addr,
		})

		stopSync()
		app.wg.Wait()
		shutdownError <- nil
	}()

	app.logger.PrintInfo("starting server", map[string]string{
		"addr":     srv.Addr,
		"env":      app.config.env,
		"contract": app.chain.ContractAddress().Hex(),
	})

	// Shutdown() makes ListenAndServe() return http.ErrServerClosed straight away, so
	// that error means a graceful shutdown has started.
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.PrintInfo("stopped server", map[string]string{
		"addr": srv.Addr,
	})

	return nil
}
