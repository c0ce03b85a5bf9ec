// Package gateway roteia /api/* para os serviços internos.
package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
)

// Targets são as URLs base dos serviços atrás do gateway
type Targets struct {
	Odds    string
	Slips   string
	Budgets string
}

// Router monta o proxy. O prefixo /api/odds é removido; /api/slips e /api/budgets
// viram /slips e /budgets no serviço de destino.
func Router(log *zap.Logger, t Targets, allowedOrigins string) (http.Handler, error) {
	odds, err := proxy(log, t.Odds)
	if err != nil {
		return nil, err
	}
	slips, err := proxy(log, t.Slips)
	if err != nil {
		return nil, err
	}
	budgets, err := proxy(log, t.Budgets)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(log))
	r.Use(metrics.Instrument("api-gateway"))
	r.Use(cors(allowedOrigins))

	r.Handle("/api/odds/*", http.StripPrefix("/api/odds", odds))
	r.Handle("/api/slips", http.StripPrefix("/api", slips))
	r.Handle("/api/slips/*", http.StripPrefix("/api", slips))
	r.Handle("/api/budgets/*", http.StripPrefix("/api", budgets))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r, nil
}

func proxy(log *zap.Logger, target string) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", target)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed", zap.String("upstream", u.Host), zap.String("path", r.URL.Path), zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
	}
	return p, nil
}

// cors aceita "*" ou uma lista separada por vírgula
func cors(allowed string) func(http.Handler) http.Handler {
	origins := map[string]bool{}
	wildcard := false
	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			wildcard = true
		}
		if o != "" {
			origins[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case wildcard:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && origins[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
