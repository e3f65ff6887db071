package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/cache"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/client"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/metrics"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/xmlapi"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api/"

// requestTimeout bounds a single proxied request.
const requestTimeout = 30 * time.Second

// newMux wires the proxy routes.
func newMux(xmlClient *client.Client, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/purge", purgeHandler(xmlClient, logger))
	mux.HandleFunc(apiPrefix, apiProxyHandler(xmlClient, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// apiProxyHandler serves /api/<action>[.xml.aspx]?<params> through the
// cached client. Credentials in the incoming query are ignored; the
// proxy's own credential is used.
func apiProxyHandler(xmlClient *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		action := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, apiPrefix), ".xml.aspx")
		if action == "" || strings.Count(action, "/") != 1 {
			http.Error(w, fmt.Sprintf("invalid action %q", action), http.StatusNotFound)
			return
		}

		params := r.URL.Query()
		params.Del(cache.KeyIDParam)
		params.Del(cache.SecretParam)

		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		doc, err := xmlClient.Perform(ctx, action, params)
		if err != nil {
			status := statusFor(err)
			logger.Warn().Err(err).Str("action", action).Int("status", status).Msg("Proxy request failed")
			http.Error(w, fmt.Sprintf("XML API request failed: %v", err), status)
			return
		}

		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		w.Header().Set("Cache-Control", fmt.Sprintf("max-age=%d", maxAge(doc, time.Now())))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(doc.Raw()); err != nil {
			logger.Debug().Err(err).Msg("Failed to write response")
		}
	}
}

// purgeHandler drops every cached response of the proxy's silo.
func purgeHandler(xmlClient *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := xmlClient.Purge(r.Context()); err != nil {
			logger.Error().Err(err).Msg("Purge failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		logger.Info().Str("silo", xmlClient.Silo()).Msg("Purged cache silo")
		w.WriteHeader(http.StatusNoContent)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, client.ErrTransport), errors.Is(err, xmlapi.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// maxAge is the lifetime left at now in whole seconds: cachedUntil - now,
// capped at the advertised window and never negative. A document served from
// cache partway through its window advertises only what remains.
func maxAge(doc *xmlapi.Document, now time.Time) int {
	env := doc.Envelope()
	remaining := env.CachedUntil.Sub(now)
	if window := env.TTL(); remaining > window {
		remaining = window
	}
	if remaining < 0 {
		return 0
	}
	return int(remaining / time.Second)
}
