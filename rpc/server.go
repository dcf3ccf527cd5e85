// Package rpc exposes the ledger's read operations over HTTP. Writes never
// enter through here; the action log is the only write path.
package rpc

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arnsledger/core"
	corerr "arnsledger/core/errors"
)

// Server serves read-only ledger views. The mutex is shared with the replay
// loop so reads never observe a half-applied action.
type Server struct {
	sp *core.StateProcessor
	mu *sync.RWMutex
}

func NewServer(sp *core.StateProcessor, mu *sync.RWMutex) *Server {
	return &Server{sp: sp, mu: mu}
}

// Router builds the HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/v1/height", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.RLock()
		height := s.sp.Height()
		s.mu.RUnlock()
		writeJSON(w, http.StatusOK, map[string]string{"height": strconv.FormatUint(height, 10)})
	})

	r.Get("/v1/balances/{address}", s.query(core.QueryBalance, func(r *http.Request) map[string]string {
		return map[string]string{"target": chi.URLParam(r, "address")}
	}))
	r.Get("/v1/records/{name}", s.query(core.QueryRecord, func(r *http.Request) map[string]string {
		return map[string]string{"name": chi.URLParam(r, "name")}
	}))
	r.Get("/v1/tiers", s.query(core.QueryActiveTiers, nil))
	r.Get("/v1/tiers/{id}", s.query(core.QueryTier, func(r *http.Request) map[string]string {
		return map[string]string{"id": chi.URLParam(r, "id")}
	}))
	r.Get("/v1/gateways", s.query(core.QueryGatewayRegistry, nil))
	r.Get("/v1/gateways/ranked", s.query(core.QueryRankedGatewayRegistry, nil))
	r.Get("/v1/gateways/{address}", s.query(core.QueryGateway, func(r *http.Request) map[string]string {
		return map[string]string{"target": chi.URLParam(r, "address")}
	}))
	r.Get("/v1/gateways/{address}/stake", s.query(core.QueryGatewayTotalStake, func(r *http.Request) map[string]string {
		return map[string]string{"target": chi.URLParam(r, "address")}
	}))
	r.Get("/v1/settings", s.query(core.QuerySettings, nil))

	return r
}

func (s *Server) query(kind string, params func(*http.Request) map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if params != nil {
			encoded, err := json.Marshal(params(r))
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			raw = encoded
		}
		s.mu.RLock()
		view, err := s.sp.Query(kind, raw)
		s.mu.RUnlock()
		if err != nil {
			writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, corerr.ErrNameDoesNotExist),
		errors.Is(err, corerr.ErrNotRegistered),
		errors.Is(err, corerr.ErrInvalidTier):
		return http.StatusNotFound
	case errors.Is(err, corerr.ErrUnknownAction), errors.Is(err, corerr.ErrInvalidParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
