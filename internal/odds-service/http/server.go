package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/dto"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/repo"
	"github.com/radieske/fantasy-betting-league/internal/shared/logger"
	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

// Reader é o acesso de leitura ao banco
type Reader interface {
	ListGames(ctx context.Context, week int) ([]dto.Game, error)
	OptionsByGame(ctx context.Context, gameID string) (dto.GameOptions, error)
	OptionByID(ctx context.Context, id string) (dto.OptionView, error)
}

type OptionsCache interface {
	GetOptions(ctx context.Context, gameID string) (dto.GameOptions, bool, error)
	SetOptions(ctx context.Context, v dto.GameOptions) error
}

// API expõe os endpoints REST de consulta de opções de aposta
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	Log      *zap.Logger
	ReadRepo Reader           // acesso ao banco de dados
	Cache    OptionsCache     // cache de opções por jogo
	WS       http.HandlerFunc // opcional: upgrade WebSocket em /ws
}

// BestResponse traz a melhor cotação de cada resultado do jogo
type BestResponse struct {
	Game dto.Game             `json:"game"`
	Best []odds.BettingOption `json:"best"`
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware(a.Log))
	r.Use(metrics.Instrument("odds-service"))

	r.Get("/v1/games", a.listGames)               // Lista jogos da semana (?week=)
	r.Get("/v1/games/{id}/options", a.getOptions) // Opções atuais de um jogo
	r.Get("/v1/games/{id}/best", a.getBest)       // Melhor cotação por resultado
	r.Get("/v1/options/{id}", a.getOption)        // Uma opção com o seu jogo
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	a.Log.Error("odds request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// listGames retorna os jogos de uma semana
func (a *API) listGames(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil || week < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "week required"})
		return
	}
	games, err := a.ReadRepo.ListGames(r.Context(), week)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// getOptions retorna as opções de um jogo, preferencialmente do cache
func (a *API) getOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := a.options(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// getBest agrupa por resultado e escolhe a melhor casa de cada grupo
func (a *API) getBest(w http.ResponseWriter, r *http.Request) {
	opts, err := a.options(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BestResponse{Game: opts.Game, Best: odds.BestByOutcome(opts.Options)})
}

// getOption não usa cache: é lido no momento em que o usuário adiciona ao boletim
func (a *API) getOption(w http.ResponseWriter, r *http.Request) {
	v, err := a.ReadRepo.OptionByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) options(ctx context.Context, gameID string) (dto.GameOptions, error) {
	if cached, ok, err := a.Cache.GetOptions(ctx, gameID); err == nil && ok {
		metrics.OddsCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	} else if err != nil {
		a.Log.Warn("odds cache get failed", zap.String("game_id", gameID), zap.Error(err))
	}
	metrics.OddsCacheLookups.WithLabelValues("miss").Inc()

	opts, err := a.ReadRepo.OptionsByGame(ctx, gameID)
	if err != nil {
		return dto.GameOptions{}, err
	}
	if err := a.Cache.SetOptions(ctx, opts); err != nil {
		a.Log.Warn("odds cache set failed", zap.String("game_id", gameID), zap.Error(err))
	}
	return opts, nil
}
