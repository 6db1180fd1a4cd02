// Command tidal-proxy exposes the TIDAL request client as a small HTTP
// service. Requests under /tidal/ are forwarded upstream with session
// defaults, authorization and transparent token refresh applied; Prometheus
// metrics are served on /metrics.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/streamkit/go-tidal/pkg/logging"
	"github.com/streamkit/go-tidal/pkg/request"
	"github.com/streamkit/go-tidal/pkg/session"
)

func main() {
	logCfg := logging.DefaultConfig()
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logCfg.Level = logging.LogLevel(level)
	}
	logCfg.Pretty = os.Getenv("LOG_PRETTY") == "true"
	logging.Setup(logCfg)

	cfg := session.FromEnv()
	if cfg.AccessToken == "" {
		log.Fatal().Msg("TIDAL_ACCESS_TOKEN is not set")
	}

	sess := session.New(cfg)
	client := request.New(sess)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(sess))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/tidal/", tidalProxyHandler(client))

	addr := ":" + getEnv("PORT", "8080")
	log.Info().
		Str("addr", addr).
		Str("api_location", sess.APILocation()).
		Msg("starting tidal proxy server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports ready once the session holds usable credentials.
func readyHandler(sess *session.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess.AccessToken() == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "no access token")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func tidalProxyHandler(client *request.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// /tidal/playlists/abc/tracks -> playlists/abc/tracks
		endpoint := strings.TrimPrefix(r.URL.Path, "/tidal/")

		params := request.Params{}
		for key, values := range r.URL.Query() {
			params[key] = values[0]
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		resp, err := client.Perform(ctx, r.Method, endpoint, params, nil, nil)
		if err != nil {
			http.Error(w, fmt.Sprintf("upstream request failed: %v", err), http.StatusBadGateway)
			return
		}

		for key, values := range resp.Header {
			// The body is re-written below, so its original length is stale.
			if key == "Content-Length" {
				continue
			}
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}

		w.WriteHeader(resp.StatusCode)
		if _, err := w.Write(resp.Body); err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to write proxied response")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
