// Package oddsclient busca no odds-service a cotação que vai para o boletim.
package oddsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/fantasy-betting-league/pkg/betslip"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

var (
	ErrNotFound    = errors.New("betting option not found")
	ErrUnavailable = errors.New("odds service unavailable")
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

type optionView struct {
	Option odds.BettingOption `json:"option"`
	Game   struct {
		ID       string    `json:"id"`
		HomeTeam string    `json:"home_team"`
		AwayTeam string    `json:"away_team"`
		Kickoff  time.Time `json:"kickoff"`
	} `json:"game"`
}

// Option devolve a opção e o jogo dela como estão agora no odds-service
func (c *Client) Option(ctx context.Context, optionID string) (odds.BettingOption, betslip.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/options/"+url.PathEscape(optionID), nil)
	if err != nil {
		return odds.BettingOption{}, betslip.Game{}, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return odds.BettingOption{}, betslip.Game{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return odds.BettingOption{}, betslip.Game{}, fmt.Errorf("%w: %s", ErrNotFound, optionID)
	case res.StatusCode >= 300:
		return odds.BettingOption{}, betslip.Game{}, fmt.Errorf("%w: odds http %d", ErrUnavailable, res.StatusCode)
	}

	var v optionView
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		return odds.BettingOption{}, betslip.Game{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return v.Option, betslip.Game{
		GameID:   v.Game.ID,
		HomeTeam: v.Game.HomeTeam,
		AwayTeam: v.Game.AwayTeam,
		Kickoff:  v.Game.Kickoff,
	}, nil
}
