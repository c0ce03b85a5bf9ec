package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/dto"
	"github.com/radieske/fantasy-betting-league/internal/odds-service/repo"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

var game = dto.Game{ID: "g1", Week: 7, HomeTeam: "KC", AwayTeam: "BUF", Kickoff: time.Date(2026, 10, 18, 20, 25, 0, 0, time.UTC)}

func opt(id, outcome, book string, american int) odds.BettingOption {
	return odds.BettingOption{ID: id, GameID: "g1", MarketType: odds.MarketMoneyline, OutcomeName: outcome, Bookmaker: book, AmericanOdds: american}
}

type fakeReader struct {
	options dto.GameOptions
	calls   int
	err     error
}

func (f *fakeReader) ListGames(context.Context, int) ([]dto.Game, error) {
	return []dto.Game{game}, f.err
}

func (f *fakeReader) OptionsByGame(context.Context, string) (dto.GameOptions, error) {
	f.calls++
	return f.options, f.err
}

func (f *fakeReader) OptionByID(_ context.Context, id string) (dto.OptionView, error) {
	if id != "o1" {
		return dto.OptionView{}, repo.ErrNotFound
	}
	return dto.OptionView{Option: opt("o1", "KC", "fanduel", -110), Game: game}, nil
}

type memCache struct {
	m   map[string]dto.GameOptions
	err error
}

func (c *memCache) GetOptions(_ context.Context, gameID string) (dto.GameOptions, bool, error) {
	if c.err != nil {
		return dto.GameOptions{}, false, c.err
	}
	v, ok := c.m[gameID]
	return v, ok, nil
}

func (c *memCache) SetOptions(_ context.Context, v dto.GameOptions) error {
	if c.err != nil {
		return c.err
	}
	c.m[v.Game.ID] = v
	return nil
}

func newAPI(r *fakeReader, c *memCache) http.Handler {
	return (&API{Log: zap.NewNop(), ReadRepo: r, Cache: c}).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetOptions_UsesCache(t *testing.T) {
	r := &fakeReader{options: dto.GameOptions{Game: game, Options: []odds.BettingOption{opt("o1", "KC", "fanduel", -110)}}}
	c := &memCache{m: map[string]dto.GameOptions{}}
	h := newAPI(r, c)

	for i := 0; i < 3; i++ {
		rec := get(t, h, "/v1/games/g1/options")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 1, r.calls)

	var out dto.GameOptions
	require.NoError(t, json.Unmarshal(get(t, h, "/v1/games/g1/options").Body.Bytes(), &out))
	assert.Equal(t, "KC", out.Game.HomeTeam)
	require.Len(t, out.Options, 1)
}

func TestGetOptions_CacheDownFallsBackToDB(t *testing.T) {
	r := &fakeReader{options: dto.GameOptions{Game: game}}
	h := newAPI(r, &memCache{err: errors.New("redis down")})

	rec := get(t, h, "/v1/games/g1/options")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = get(t, h, "/v1/games/g1/options")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, r.calls)
}

func TestGetBest(t *testing.T) {
	r := &fakeReader{options: dto.GameOptions{Game: game, Options: []odds.BettingOption{
		opt("a", "KC", "fanduel", -110),
		opt("b", "BUF", "fanduel", 120),
		opt("c", "KC", "draftkings", -105),
		opt("d", "BUF", "caesars", 115),
	}}}
	h := newAPI(r, &memCache{m: map[string]dto.GameOptions{}})

	rec := get(t, h, "/v1/games/g1/best")
	require.Equal(t, http.StatusOK, rec.Code)

	var out BestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Best, 2)
	assert.Equal(t, "c", out.Best[0].ID)
	assert.Equal(t, "b", out.Best[1].ID)
}

func TestGetOption(t *testing.T) {
	h := newAPI(&fakeReader{}, &memCache{m: map[string]dto.GameOptions{}})

	rec := get(t, h, "/v1/options/o1")
	require.Equal(t, http.StatusOK, rec.Code)
	var v dto.OptionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, -110, v.Option.AmericanOdds)
	assert.Equal(t, "g1", v.Game.ID)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/v1/options/missing").Code)
}

func TestListGames(t *testing.T) {
	h := newAPI(&fakeReader{}, &memCache{m: map[string]dto.GameOptions{}})

	assert.Equal(t, http.StatusOK, get(t, h, "/v1/games?week=7").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/v1/games").Code)
}

func TestGetOptions_NotFound(t *testing.T) {
	h := newAPI(&fakeReader{err: repo.ErrNotFound}, &memCache{m: map[string]dto.GameOptions{}})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/v1/games/nope/options").Code)
}
