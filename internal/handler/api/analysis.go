package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	domrepo "StockLens/internal/domain/repository"
	icache "StockLens/internal/service/cache"
	"StockLens/internal/service/metrics"
	"StockLens/internal/service/ratelimit"
	"StockLens/internal/usecase"
	applogger "StockLens/pkg/logger"
)

// AnalysisHandler serves the snapshot and regime endpoints over plain
// net/http for deployments that do not mount the Echo server.
type AnalysisHandler struct {
	analysis *usecase.AnalysisUseCase
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewAnalysisHandler(analysis *usecase.AnalysisUseCase) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{analysis: analysis, rl: ratelimit.New()}
}

func (h *AnalysisHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetLogger injects a structured logger.
func (h *AnalysisHandler) SetLogger(l *applogger.Logger) { h.l = l }

func (h *AnalysisHandler) Snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "snapshot"
		defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			if h.l != nil {
				h.l.Warn("analysis.snapshot missing symbol")
			}
			http.Error(w, "symbol required", http.StatusBadRequest)
			return
		}
		market := domrepo.NormalizeMarket(r.URL.Query().Get("market"))
		if !h.rl.Allow(r.RemoteAddr+":snapshot", 5, 2) {
			if h.l != nil {
				h.l.Warn("analysis.snapshot rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		cacheKey := "snapshot:" + string(market) + ":" + symbol
		if h.cache != nil {
			if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
				if h.l != nil {
					h.l.Warn("analysis.snapshot cache_get_error", applogger.Error(err))
				}
			} else if ok {
				w.Header().Set("Content-Type", "application/json")
				if h.l != nil {
					h.l.Debug("analysis.snapshot cache_hit", applogger.String("key", cacheKey))
				}
				if _, err := w.Write(b); err != nil && h.l != nil {
					h.l.Warn("analysis.snapshot write_error", applogger.Error(err))
				}
				return
			}
			if h.l != nil {
				h.l.Debug("analysis.snapshot cache_miss", applogger.String("key", cacheKey))
			}
		}
		res, err := h.analysis.Analyze(r.Context(), symbol, market)
		if err != nil {
			metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("analysis.snapshot error", applogger.Error(err))
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(res)
		if err != nil {
			if h.l != nil {
				h.l.Error("analysis.snapshot marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if h.cache != nil {
			if err := h.cache.SetBytes(cacheKey, b, 60*time.Second); err != nil && h.l != nil {
				h.l.Warn("analysis.snapshot cache_set_error", applogger.Error(err))
			}
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("analysis.snapshot write_error", applogger.Error(err))
		}
	}
}

func (h *AnalysisHandler) Regime() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "regime"
		defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		history := parseInt(r.URL.Query().Get("history"), 0)
		if history < 0 || history > 100 {
			http.Error(w, "history out of range", http.StatusBadRequest)
			return
		}
		if !h.rl.Allow(r.RemoteAddr+":regime", 5, 2) {
			if h.l != nil {
				h.l.Warn("analysis.regime rate_limited", applogger.String("remote", r.RemoteAddr))
			}
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(h.analysis.Regime(history))
		if err != nil {
			metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
			if h.l != nil {
				h.l.Error("analysis.regime marshal_error", applogger.Error(err))
			}
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("analysis.regime write_error", applogger.Error(err))
		}
	}
}

func (h *AnalysisHandler) Parameters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		endpoint := "parameters"
		defer func() { metrics.AnalysisLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		name := r.URL.Query().Get("regime")
		w.Header().Set("Content-Type", "application/json")
		b, err := json.Marshal(h.analysis.Parameters(name))
		if err != nil {
			metrics.AnalysisErrors.WithLabelValues(endpoint).Inc()
			http.Error(w, "encode error", http.StatusInternalServerError)
			return
		}
		if _, err := w.Write(b); err != nil && h.l != nil {
			h.l.Warn("analysis.parameters write_error", applogger.Error(err))
		}
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
