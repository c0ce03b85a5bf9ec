package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/budget-service/dto"
	"github.com/radieske/fantasy-betting-league/internal/budget-service/repo"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

// Repo define as operações de orçamento usadas pelo handler HTTP
type Repo interface {
	GetOrCreateBudget(ctx context.Context, k repo.Key) (repo.Budget, error)
	History(ctx context.Context, k repo.Key) ([]repo.BetRecord, []repo.ParlayRecord, error)
	PlaceBets(ctx context.Context, sub repo.BetsSubmission) (repo.BetsPlaced, error)
	PlaceParlay(ctx context.Context, sub repo.ParlaySubmission) (repo.ParlayPlaced, error)
}

type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishParlayPlaced(ctx context.Context, e events.ParlayPlaced) error
}

// Server expõe o orçamento semanal e o envio de apostas
type Server struct {
	log      *zap.Logger
	repo     Repo
	publ     Publisher
	validate *validator.Validate
}

// NewServer instancia o servidor HTTP do budget-service
func NewServer(log *zap.Logger, repo Repo, publ Publisher) *Server {
	return &Server{log: log, repo: repo, publ: publ, validate: validator.New()}
}

// Router retorna o roteador com as rotas da API de orçamento
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(s.log))
	r.Use(metrics.Instrument("budget-service"))

	r.Get("/budgets/{userID}/weeks/{week}", s.getBudget) // ?leagueId=
	r.Post("/bets", s.placeBets)
	r.Post("/parlays", s.placeParlay)
	return r
}

// getBudget retorna (ou cria) o orçamento da semana e o histórico de apostas
func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "invalid week")
		return
	}
	leagueID := r.URL.Query().Get("leagueId")
	if leagueID == "" {
		writeError(w, http.StatusBadRequest, "leagueId required")
		return
	}
	k := repo.Key{UserID: chi.URLParam(r, "userID"), LeagueID: leagueID, Week: week}

	b, err := s.repo.GetOrCreateBudget(r.Context(), k)
	if err != nil {
		s.fail(w, err)
		return
	}
	bets, parlays, err := s.repo.History(r.Context(), k)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := dto.BudgetResponse{
		UserID:         k.UserID,
		LeagueID:       k.LeagueID,
		Week:           k.Week,
		RemainingCents: b.RemainingCents,
		Bets:           make([]dto.BetView, 0, len(bets)),
		Parlays:        make([]dto.ParlayView, 0, len(parlays)),
	}
	for _, b := range bets {
		resp.Bets = append(resp.Bets, dto.BetView(b))
	}
	for _, p := range parlays {
		resp.Parlays = append(resp.Parlays, dto.ParlayView{
			ID:               p.ID,
			MatchupID:        p.MatchupID,
			BettingOptionIDs: p.BettingOptionIDs,
			CombinedOdds:     p.CombinedOdds.StringFixed(4),
			AmountCents:      p.AmountCents,
			Status:           p.Status,
			CreatedAt:        p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// placeBets grava o lote de apostas simples
func (s *Server) placeBets(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetsRequest
	if !s.decode(w, r, &req) {
		return
	}

	sub := repo.BetsSubmission{
		Key:           repo.Key{UserID: req.UserID, LeagueID: req.LeagueID, Week: req.Week},
		SubmissionRef: req.SubmissionRef,
		Bets:          make([]repo.FlatBet, len(req.Bets)),
	}
	for i, b := range req.Bets {
		sub.Bets[i] = repo.FlatBet(b)
	}

	res, err := s.repo.PlaceBets(r.Context(), sub)
	if err != nil {
		metrics.Placements.WithLabelValues("bets", resultLabel(err)).Inc()
		s.fail(w, err)
		return
	}

	resp := dto.PlaceResponse{RemainingCents: res.RemainingCents, Replayed: res.Replayed, IDs: make([]string, 0, len(res.Bets))}
	for _, b := range res.Bets {
		resp.IDs = append(resp.IDs, b.ID)
	}

	if res.Replayed {
		metrics.Placements.WithLabelValues("bets", "replayed").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	metrics.Placements.WithLabelValues("bets", "ok").Inc()

	for _, b := range res.Bets {
		if err := s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
			BetID:           b.ID,
			UserID:          req.UserID,
			LeagueID:        req.LeagueID,
			Week:            req.Week,
			MatchupID:       b.MatchupID,
			BettingOptionID: b.BettingOptionID,
			AmericanOdds:    b.AmericanOdds,
			AmountCents:     b.AmountCents,
			SubmissionRef:   req.SubmissionRef,
		}); err != nil {
			s.log.Warn("publish bet_placed", zap.String("bet_id", b.ID), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// placeParlay grava um parlay após revalidar as pernas
func (s *Server) placeParlay(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceParlayRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.repo.PlaceParlay(r.Context(), repo.ParlaySubmission{
		Key:              repo.Key{UserID: req.UserID, LeagueID: req.LeagueID, Week: req.Week},
		SubmissionRef:    req.SubmissionRef,
		MatchupID:        req.MatchupID,
		BettingOptionIDs: req.BettingOptionIDs,
		AmountCents:      req.AmountCents,
	})
	if err != nil {
		metrics.Placements.WithLabelValues("parlay", resultLabel(err)).Inc()
		s.fail(w, err)
		return
	}

	resp := dto.PlaceResponse{IDs: []string{res.Parlay.ID}, RemainingCents: res.RemainingCents, Replayed: res.Replayed}
	if res.Replayed {
		metrics.Placements.WithLabelValues("parlay", "replayed").Inc()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	metrics.Placements.WithLabelValues("parlay", "ok").Inc()
	resp.CombinedOdds = res.Parlay.CombinedOdds.StringFixed(4)

	if err := s.publ.PublishParlayPlaced(r.Context(), events.ParlayPlaced{
		ParlayID:         res.Parlay.ID,
		UserID:           req.UserID,
		LeagueID:         req.LeagueID,
		Week:             req.Week,
		MatchupID:        req.MatchupID,
		BettingOptionIDs: req.BettingOptionIDs,
		CombinedOdds:     resp.CombinedOdds,
		AmountCents:      req.AmountCents,
		SubmissionRef:    req.SubmissionRef,
	}); err != nil {
		s.log.Warn("publish parlay_placed", zap.String("parlay_id", res.Parlay.ID), zap.Error(err))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return false
	}
	return true
}

// fail traduz erros do domínio em status HTTP
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrInsufficientBudget):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repo.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case isValidation(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error("budget request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		repo.ErrUnknownOption, repo.ErrOptionLocked, repo.ErrInvalidAmount,
		parlay.ErrNoLegs, parlay.ErrTooFewLegs, parlay.ErrTooManyLegs,
		parlay.ErrLockedLeg, parlay.ErrDuplicateLeg, parlay.ErrZeroStake,
		odds.ErrZeroAmericanOdds, odds.ErrUnknownMarket,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func resultLabel(err error) string {
	if errors.Is(err, repo.ErrInsufficientBudget) || isValidation(err) {
		return "rejected"
	}
	return "error"
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
