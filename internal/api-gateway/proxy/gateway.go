package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/shared/metrics"
)

const (
	UpstreamBid  = "bid-service"
	UpstreamLive = "live-service"
)

// Options: destinos do roteamento e origens liberadas no CORS
type Options struct {
	BidServiceURL  string
	LiveServiceURL string
	CORSOrigins    []string
}

// New monta o roteador do gateway:
//
//	/api/*  -> bid-service  (prefixo removido)
//	/live/* -> live-service (prefixo removido, inclui upgrade WebSocket)
func New(opts Options, m *metrics.GatewayMetrics, log *zap.Logger) (http.Handler, error) {
	bid, err := reverseProxy(UpstreamBid, opts.BidServiceURL, log)
	if err != nil {
		return nil, err
	}
	live, err := reverseProxy(UpstreamLive, opts.LiveServiceURL, log)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(withCORS(opts.CORSOrigins))

	r.Handle("/api/*", count(UpstreamBid, m, http.StripPrefix("/api", bid)))
	r.Handle("/live/*", count(UpstreamLive, m, http.StripPrefix("/live", live)))
	return r, nil
}

func reverseProxy(name, target string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s url %q", name, target)
	}
	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream unavailable",
			zap.String("upstream", name),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "upstream unavailable"})
	}
	return p, nil
}

// count registra o status devolvido por upstream; conexões WebSocket
// sequestradas pelo proxy não passam por WriteHeader e contam como 101
func count(upstream string, m *metrics.GatewayMetrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				code = http.StatusSwitchingProtocols
			}
		}
		m.Requests.WithLabelValues(upstream, strconv.Itoa(code)).Inc()
	})
}

// withCORS libera apenas as origens configuradas ("*" libera todas).
// Preflight de origem desconhecida recebe 403.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			ok := false
			if origin != "" {
				_, ok = allowed[origin]
				ok = ok || wildcard
			}
			if ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if !ok {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
