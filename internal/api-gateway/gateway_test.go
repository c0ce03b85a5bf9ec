package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// echo responde com o nome do serviço e o caminho recebido
func echo(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, name+" "+r.Method+" "+r.URL.RequestURI())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Proxies(t *testing.T) {
	h, err := Router(zap.NewNop(), Targets{
		Odds:    echo(t, "odds").URL,
		Slips:   echo(t, "slips").URL,
		Budgets: echo(t, "budgets").URL,
	}, "*")
	require.NoError(t, err)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/odds/v1/games/g1/best", "odds GET /v1/games/g1/best"},
		{http.MethodGet, "/api/odds/v1/games?week=3", "odds GET /v1/games?week=3"},
		{http.MethodPost, "/api/slips", "slips POST /slips"},
		{http.MethodPatch, "/api/slips/s1/entries/e1", "slips PATCH /slips/s1/entries/e1"},
		{http.MethodGet, "/api/budgets/u1/weeks/3?leagueId=l1", "budgets GET /budgets/u1/weeks/3?leagueId=l1"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.want, rr.Body.String())
			assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRouter_UpstreamDown(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	h, err := Router(zap.NewNop(), Targets{Odds: dead.URL, Slips: dead.URL, Budgets: dead.URL}, "*")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/odds/v1/options/o1", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.JSONEq(t, `{"error":"upstream unavailable"}`, rr.Body.String())
}

func TestCORS(t *testing.T) {
	h, err := Router(zap.NewNop(), Targets{Odds: "http://odds:8080", Slips: "http://slips:8083", Budgets: "http://budget:8082"},
		"https://app.example.com, https://admin.example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/slips/s1/place", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "https://admin.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/slips/s1/place", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_InvalidTarget(t *testing.T) {
	_, err := Router(zap.NewNop(), Targets{Odds: "::bad", Slips: "http://s", Budgets: "http://b"}, "*")
	assert.Error(t, err)
}
