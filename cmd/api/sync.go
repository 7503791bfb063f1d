package main

import (
	"context"
	"expvar"
	"strconv"
	"time"
)

var (
	syncsCompleted = expvar.NewInt("syncs_completed")
	syncsFailed    = expvar.NewInt("syncs_failed")
	lastSync       = expvar.NewInt("last_sync_timestamp")
)

// syncMovies re-reads every token from the chain and rewrites the cache with the
// result. On error the previous cache is left untouched.
func (app *application) syncMovies(ctx context.Context) (int, error) {
	app.syncMu.Lock()
	defer app.syncMu.Unlock()

	movies, err := app.chain.Movies(ctx)
	if err != nil {
		syncsFailed.Add(1)
		return 0, err
	}

	err = app.models.Movies.ReplaceAll(movies)
	if err != nil {
		syncsFailed.Add(1)
		return 0, err
	}

	syncsCompleted.Add(1)
	lastSync.Set(time.Now().Unix())

	return len(movies), nil
}

// resync is called after a mutating transaction has been mined. A failure is only
// logged; the background syncer will catch up.
func (app *application) resync(ctx context.Context, reason string) {
	// syncMu is held for the whole sync. Bound it by the transaction timeout.
	timeout := app.config.eth.txTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n, err := app.syncMovies(ctx)
	if err != nil {
		app.logger.PrintError(err, map[string]string{"sync": reason})
		return
	}

	app.logger.PrintInfo("movie cache synced", map[string]string{
		"reason": reason,
		"movies": strconv.Itoa(n),
	})
}

func (app *application) runSyncer(ctx context.Context, interval time.Duration) {
	app.resync(ctx, "startup")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.resync(ctx, "interval")
		}
	}
}
