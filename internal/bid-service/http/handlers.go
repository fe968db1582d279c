package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/match-bid-platform/internal/bid-service/dto"
	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
)

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	return id, nil
}

// auth

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Token(sess))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Token(sess))
}

// users

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.CurrentUser(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.User(u))
}

func (s *Server) myStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.GetUserStats(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.bids.Dashboard(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) bidUsage(w http.ResponseWriter, r *http.Request) {
	u, err := s.bids.BidUsage(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// fixtures

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.fixtures.Teams(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	q := dto.MatchListQuery{
		Series:   r.URL.Query().Get("series"),
		Category: r.URL.Query().Get("category"),
	}
	if err := s.validate.Struct(q); err != nil {
		s.writeError(w, r, err)
		return
	}
	ms, err := s.fixtures.List(r.Context(), q.Series, ledger.Category(q.Category))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Matches(ms, s.now()))
}

func (s *Server) todayMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := s.fixtures.Today(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Matches(ms, s.now()))
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.fixtures.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Match(m, s.now()))
}

func (s *Server) matchBids(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.bids.MatchBreakdown(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Breakdown(b, s.now()))
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.fixtures.CreateMatch(r.Context(), userID(r), repo.NewMatch{
		Team1ID:  req.Team1ID,
		Team2ID:  req.Team2ID,
		Date:     req.MatchDate,
		Time:     req.MatchTime,
		Venue:    req.Venue,
		Category: ledger.Category(req.MatchType),
		Series:   req.Series,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Match(m, s.now()))
}

// bids

func (s *Server) placeBid(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBidRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.bids.PlaceWager(r.Context(), userID(r), req.MatchID, req.SelectedTeamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if p.Updated {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.PlaceBidResponse{BidResponse: dto.Bid(p.Wager), Updated: p.Updated})
}

func (s *Server) myBids(w http.ResponseWriter, r *http.Request) {
	ws, err := s.bids.ListMyWagers(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MyBids(ws, s.now()))
}

func (s *Server) bidForMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wg, err := s.bids.GetWager(r.Context(), userID(r), matchID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Bid(wg))
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.board.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// admin

func (s *Server) confirmResult(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req dto.ConfirmResultRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.settle.ConfirmResult(r.Context(), userID(r), id, req.WinnerTeamID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Settlement(res))
}

func (s *Server) rebuildStats(w http.ResponseWriter, r *http.Request) {
	rep, err := s.stats.RebuildAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RebuildResponse{
		Users:      rep.Users,
		Wagers:     rep.Wagers,
		DurationMs: rep.Duration.Milliseconds(),
	})
}
