package httpapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/auth"
	"github.com/radieske/match-bid-platform/internal/bid-service/bidding"
	"github.com/radieske/match-bid-platform/internal/bid-service/fixtures"
	"github.com/radieske/match-bid-platform/internal/bid-service/leaderboard"
	"github.com/radieske/match-bid-platform/internal/bid-service/settlement"
	"github.com/radieske/match-bid-platform/internal/bid-service/stats"
)

const maxBodyBytes = 1 << 20

// Server expõe a API REST do bid-service
type Server struct {
	log      *zap.Logger
	auth     *auth.Service
	bids     *bidding.Service
	settle   *settlement.Engine
	stats    *stats.Service
	board    *leaderboard.Service
	fixtures *fixtures.Service
	validate *validator.Validate
	now      func() time.Time
}

// Deps agrupa os serviços de domínio usados pelos handlers
type Deps struct {
	Auth        *auth.Service
	Bids        *bidding.Service
	Settlement  *settlement.Engine
	Stats       *stats.Service
	Leaderboard *leaderboard.Service
	Fixtures    *fixtures.Service
}

type Option func(*Server)

// WithClock: relógio usado para is_locked/seconds_until_start nas respostas
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(log *zap.Logger, d Deps, opts ...Option) *Server {
	s := &Server{
		log:      log,
		auth:     d.Auth,
		bids:     d.Bids,
		settle:   d.Settlement,
		stats:    d.Stats,
		board:    d.Leaderboard,
		fixtures: d.Fixtures,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)
	r.Get("/teams", s.listTeams)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/users/me", s.me)
		r.Get("/users/me/stats", s.myStats)
		r.Get("/users/me/dashboard", s.dashboard)
		r.Get("/users/me/bid-usage", s.bidUsage)

		r.Get("/matches", s.listMatches)
		r.Get("/matches/today", s.todayMatches)
		r.Get("/matches/{id}", s.getMatch)
		r.Get("/matches/{id}/bids", s.matchBids)

		r.Post("/bids", s.placeBid)
		r.Get("/bids/my", s.myBids)
		r.Get("/bids/for-match/{matchID}", s.bidForMatch)

		r.Get("/leaderboard", s.leaderboard)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/matches", s.createMatch)
			r.Post("/admin/matches/{id}/result", s.confirmResult)
			r.Post("/admin/stats/rebuild", s.rebuildStats)
		})
	})
	return r
}

// newValidator reporta os campos pelo nome JSON
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
