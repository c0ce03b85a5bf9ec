package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/budget"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/dto"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/oddsclient"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/service"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/store"
	"github.com/radieske/fantasy-betting-league/pkg/betslip"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

// Slips define as operações do boletim usadas pelo handler HTTP
type Slips interface {
	Open(ctx context.Context, key betslip.Key, matchupID string) (*betslip.Slip, error)
	Get(ctx context.Context, slipID string) (*betslip.Slip, error)
	AddEntry(ctx context.Context, slipID, optionID string) (*betslip.Slip, betslip.Notice, error)
	RemoveEntry(ctx context.Context, slipID, entryID string) (*betslip.Slip, error)
	UpdateStake(ctx context.Context, slipID, entryID string, amount decimal.Decimal) (*betslip.Slip, error)
	Clear(ctx context.Context, slipID string) (*betslip.Slip, error)
	AddLeg(ctx context.Context, slipID, optionID string) (*betslip.Slip, error)
	RemoveLeg(ctx context.Context, slipID, optionID string) (*betslip.Slip, error)
	SetParlayStake(ctx context.Context, slipID string, amount decimal.Decimal) (*betslip.Slip, error)
	ClearParlay(ctx context.Context, slipID string) (*betslip.Slip, error)
	Place(ctx context.Context, slipID string) (service.Outcome, error)
}

type Server struct {
	log      *zap.Logger
	slips    Slips
	validate *validator.Validate
}

func NewServer(log *zap.Logger, slips Slips) *Server {
	return &Server{log: log, slips: slips, validate: validator.New()}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(s.log))
	r.Use(metrics.Instrument("slip-service"))

	r.Post("/slips", s.open)
	r.Route("/slips/{id}", func(r chi.Router) {
		r.Get("/", s.get)
		r.Delete("/", s.clear)

		r.Post("/entries", s.addEntry)
		r.Patch("/entries/{entryID}", s.updateStake)
		r.Delete("/entries/{entryID}", s.removeEntry)

		r.Post("/legs", s.addLeg)
		r.Delete("/legs/{optionID}", s.removeLeg)
		r.Get("/parlay", s.getParlay)
		r.Put("/parlay/stake", s.setParlayStake)
		r.Delete("/parlay", s.clearParlay)

		r.Post("/place", s.place)
	})
	return r
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSlipRequest
	if !s.decode(w, r, &req) {
		return
	}
	key := betslip.Key{UserID: req.UserID, LeagueID: req.LeagueID, Week: req.Week}
	slip, err := s.slips.Open(r.Context(), key, req.MatchupID)
	s.respond(w, slip, nil, err)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.Get(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, slip, nil, err)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.Clear(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, slip, nil, err)
}

// addEntry devolve 200 também quando a odd não é melhor; o motivo vai no notice
func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.OptionRequest
	if !s.decode(w, r, &req) {
		return
	}
	slip, notice, err := s.slips.AddEntry(r.Context(), chi.URLParam(r, "id"), req.OptionID)
	s.respond(w, slip, &notice, err)
}

func (s *Server) updateStake(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !s.decode(w, r, &req) {
		return
	}
	slip, err := s.slips.UpdateStake(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"), *req.Stake)
	s.respond(w, slip, nil, err)
}

func (s *Server) removeEntry(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.RemoveEntry(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	s.respond(w, slip, nil, err)
}

func (s *Server) addLeg(w http.ResponseWriter, r *http.Request) {
	var req dto.OptionRequest
	if !s.decode(w, r, &req) {
		return
	}
	slip, err := s.slips.AddLeg(r.Context(), chi.URLParam(r, "id"), req.OptionID)
	s.respond(w, slip, nil, err)
}

func (s *Server) removeLeg(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.RemoveLeg(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "optionID"))
	s.respond(w, slip, nil, err)
}

func (s *Server) getParlay(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewParlayView(slip))
}

func (s *Server) setParlayStake(w http.ResponseWriter, r *http.Request) {
	var req dto.StakeRequest
	if !s.decode(w, r, &req) {
		return
	}
	slip, err := s.slips.SetParlayStake(r.Context(), chi.URLParam(r, "id"), *req.Stake)
	s.respond(w, slip, nil, err)
}

func (s *Server) clearParlay(w http.ResponseWriter, r *http.Request) {
	slip, err := s.slips.ClearParlay(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, slip, nil, err)
}

// place: 201 com tudo confirmado, 200 com confirmação parcial, status do erro se nada passou
func (s *Server) place(w http.ResponseWriter, r *http.Request) {
	out, err := s.slips.Place(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := dto.PlaceResponse{Slip: dto.NewSlipView(out.Slip), BetIDs: out.BetIDs, ParlayID: out.ParlayID}
	if out.BetsErr != nil {
		resp.BetsError = message(out.BetsErr)
	}
	if out.ParlayErr != nil {
		resp.ParlayError = message(out.ParlayErr)
	}

	switch {
	case out.Err() == nil:
		writeJSON(w, http.StatusCreated, resp)
	case out.Placed():
		writeJSON(w, http.StatusOK, resp)
	default:
		writeJSON(w, s.status(out.Err()), resp)
	}
}

func (s *Server) respond(w http.ResponseWriter, slip *betslip.Slip, notice *betslip.Notice, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	resp := dto.SlipResponse{Slip: dto.NewSlipView(slip)}
	if notice != nil && notice.Kind != "" {
		resp.Notice = notice
	}
	writeJSON(w, http.StatusOK, resp)
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

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeError(w, s.status(err), message(err))
}

// status traduz erros do domínio e dos backends em status HTTP
func (s *Server) status(err error) int {
	var rej *budget.RejectedError
	switch {
	case errors.As(err, &rej):
		return rej.Status
	case errors.Is(err, store.ErrNotFound), errors.Is(err, oddsclient.ErrNotFound),
		errors.Is(err, betslip.ErrEntryNotFound), errors.Is(err, betslip.ErrLegNotFound):
		return http.StatusNotFound
	case errors.Is(err, betslip.ErrPlacementInFlight), errors.Is(err, betslip.ErrOverBudget),
		errors.Is(err, betslip.ErrStakeExceedsBudget), errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, oddsclient.ErrUnavailable), errors.Is(err, budget.ErrUnavailable):
		s.log.Warn("upstream unavailable", zap.Error(err))
		return http.StatusBadGateway
	case isValidation(err):
		return http.StatusUnprocessableEntity
	default:
		s.log.Error("slip request failed", zap.Error(err))
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		betslip.ErrOptionLocked, betslip.ErrNothingToPlace, service.ErrStakePrecision,
		parlay.ErrNoLegs, parlay.ErrTooFewLegs, parlay.ErrTooManyLegs,
		parlay.ErrLockedLeg, parlay.ErrDuplicateLeg, parlay.ErrNegativeStake, parlay.ErrZeroStake,
		odds.ErrZeroAmericanOdds, odds.ErrUnknownMarket,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// message esconde detalhes de erros internos
func message(err error) string {
	var rej *budget.RejectedError
	switch {
	case errors.As(err, &rej):
		return rej.Message
	case errors.Is(err, oddsclient.ErrUnavailable):
		return oddsclient.ErrUnavailable.Error()
	case errors.Is(err, budget.ErrUnavailable):
		return budget.ErrUnavailable.Error()
	case isValidation(err), errors.Is(err, store.ErrNotFound), errors.Is(err, oddsclient.ErrNotFound),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, betslip.ErrEntryNotFound), errors.Is(err, betslip.ErrLegNotFound),
		errors.Is(err, betslip.ErrPlacementInFlight), errors.Is(err, betslip.ErrOverBudget),
		errors.Is(err, betslip.ErrStakeExceedsBudget):
		return err.Error()
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}
