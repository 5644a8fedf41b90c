package worldstate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ffhgterh111-hub/LFGWarframeMain/kit"
	"github.com/ffhgterh111-hub/LFGWarframeMain/shield"
)

// Handler returns the read API:
//
//	GET  /health
//	GET  /status
//	GET  /current/{category}
//	POST /changes/consume
//	POST /refresh
//	GET  /arbitration/tier/{tier}
//	GET  /metrics
func (s *Service) Handler() http.Handler {
	ep := s.endpoints()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := kit.WithTransport(r.Context(), "http")
			ctx = kit.WithRequestID(ctx, middleware.GetReqID(ctx))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	for _, mw := range shield.APIStack(s.logger) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", serve(ep.status, nil))
	r.Get("/current/{category}", serve(ep.current, func(r *http.Request) any {
		return &currentRequest{Category: chi.URLParam(r, "category")}
	}))
	r.Post("/changes/consume", serve(ep.consume, nil))
	r.Post("/refresh", serve(ep.refresh, nil))
	r.Get("/arbitration/tier/{tier}", serve(ep.tier, func(r *http.Request) any {
		return &tierRequest{Tier: chi.URLParam(r, "tier")}
	}))
	r.Method(http.MethodGet, "/metrics", s.MetricsHandler())
	return r
}

// serve adapts an endpoint to HTTP. decode may be nil for endpoints that
// take no input.
func serve(ep kit.Endpoint, decode func(*http.Request) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req any
		if decode != nil {
			req = decode(r)
		}
		resp, err := ep(r.Context(), req)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
