package main

import (
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/tomasen/realip"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The deferred function runs while Go unwinds the stack after a panic.
		defer func() {
			// recover() returns nil unless the handler chain panicked.
			if err := recover(); err != nil {
				// Makes Go's HTTP server close the connection once the response is sent.
				w.Header().Set("Connection", "close")

				// recover() returns an interface{}, so normalise it into an error. It is
				// logged at ERROR level and the client gets a 500.
				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) rateLimit(next http.Handler) http.Handler {
	// Each client gets its own limiter plus the time it was last seen.
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	// clients is keyed by client IP and guarded by mu.
	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Once a minute, forget clients that haven't been seen for three minutes.
	go func() {
		for {
			time.Sleep(time.Minute)

			// No limiter checks can run while the map is being cleaned.
			mu.Lock()

			for ip, client := range clients {
				if time.Since(client.lastSeen) > 3*time.Minute {
					delete(clients, ip)
				}
			}

			mu.Unlock()
		}
	}()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only limit when -limiter-enabled is set.
		if app.config.limiter.enabled {
			// realip honours X-Forwarded-For and X-Real-Ip, so clients behind a proxy
			// are told apart.
			ip := realip.FromRequest(r)

			mu.Lock()

			// First request from this IP: give it a limiter built from the configured
			// requests-per-second and burst.
			if _, found := clients[ip]; !found {
				clients[ip] = &client{
					limiter: rate.NewLimiter(rate.Limit(app.config.limiter.rps), app.config.limiter.burst),
				}
			}

			clients[ip].lastSeen = time.Now()

			// Out of tokens: unlock before writing the 429.
			if !clients[ip].limiter.Allow() {
				mu.Unlock()
				app.rateLimitExceededResponse(w, r)
				return
			}

			// Not deferred: the lock must not be held while downstream handlers run.
			mu.Unlock()
		}

		next.ServeHTTP(w, r)
	})
}

// authenticate marks the request as coming from the operator when it carries
// "Authorization: Bearer <key>" matching the configured hash.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Responses differ with the Authorization header, so caches must key on it.
		w.Header().Add("Vary", "Authorization")

		// Get returns "" when the header is missing.
		authorizationHeader := r.Header.Get("Authorization")

		// No header, or no operator key configured: the request carries on as
		// anonymous and requireOperator decides whether that is enough.
		if authorizationHeader == "" || app.config.auth.operatorKeyHash == "" {
			r = app.contextSetCaller(r, anonymousCaller)
			next.ServeHTTP(w, r)
			return
		}

		// Otherwise the header must read "Bearer <operator key>".
		headerParts := strings.Split(authorizationHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			app.invalidAuthenticationTokenResponse(w, r)
			return
		}

		key := headerParts[1]

		// Compare against the configured bcrypt hash. A mismatch is a 401; any other
		// error means the hash itself is malformed.
		err := bcrypt.CompareHashAndPassword([]byte(app.config.auth.operatorKeyHash), []byte(key))
		if err != nil {
			switch {
			case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
				app.invalidAuthenticationTokenResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		// Record the operator in the request context for requireOperator.
		r = app.contextSetCaller(r, &caller{Operator: true})

		next.ServeHTTP(w, r)
	})
}

// requireOperator guards routes that send transactions. With no operator key
// configured (development) the routes are open.
func (app *application) requireOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.config.auth.operatorKeyHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		// authenticate has already rejected bad keys, so anything left that isn't the
		// operator simply didn't send one.
		if !app.contextGetCaller(r).Operator {
			app.authenticationRequiredResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The response depends on both of these request headers.
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")

		// Only act when there is an Origin header and at least one trusted origin.
		if origin != "" && len(app.config.cors.trustedOrigins) != 0 {
			// The origin has to match a trusted one exactly.
			for i := range app.config.cors.trustedOrigins {
				if origin == app.config.cors.trustedOrigins[i] {
					w.Header().Set("Access-Control-Allow-Origin", origin)

					// An OPTIONS request carrying Access-Control-Request-Method is a
					// preflight. Answer it here with the methods the browser may use to
					// send transactions.
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, POST, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

						// Send the preflight headers with a 200 and stop here.
						w.WriteHeader(http.StatusOK)
						return
					}
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

// expvar names can only be published once, while routes() may be built many times.
var (
	totalRequestsReceived           = expvar.NewInt("total_requests_received")
	totalResponsesSent              = expvar.NewInt("total_responses_sent")
	totalProcessingTimeMicroseconds = expvar.NewInt("total_processing_time_μs")
	totalResponsesSentByStatus      = expvar.NewMap("total_responses_sent_by_status")
)

func (app *application) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		totalRequestsReceived.Add(1)

		// CaptureMetrics runs the rest of the chain and records the status code,
		// bytes written and duration.
		metrics := httpsnoop.CaptureMetrics(next, w, r)

		totalResponsesSent.Add(1)

		// Cumulative processing time, in microseconds.
		totalProcessingTimeMicroseconds.Add(metrics.Duration.Microseconds())

		// expvar maps are string keyed, so the status code is converted first.
		totalResponsesSentByStatus.Add(strconv.Itoa(metrics.Code), 1)
	})
}
