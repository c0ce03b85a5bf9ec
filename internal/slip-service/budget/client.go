package budget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	budgetdto "github.com/radieske/fantasy-betting-league/internal/slip-service/budget/dto"
	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

// ErrUnavailable cobre falha de rede e 5xx: o envio pode ser repetido com a mesma referência
var ErrUnavailable = errors.New("budget service unavailable")

// RejectedError é uma recusa definitiva do budget-service (4xx)
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("budget rejected (%d): %s", e.Status, e.Message)
}

// Placed é a confirmação de um envio
type Placed struct {
	IDs       []string
	Remaining decimal.Decimal
	Replayed  bool
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Remaining devolve o saldo semanal restante
func (c *Client) Remaining(ctx context.Context, key betslip.Key) (decimal.Decimal, error) {
	u := fmt.Sprintf("%s/budgets/%s/weeks/%d?leagueId=%s",
		c.BaseURL, url.PathEscape(key.UserID), key.Week, url.QueryEscape(key.LeagueID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	var out budgetdto.BudgetResponse
	if err := c.do(req, &out); err != nil {
		return decimal.Zero, err
	}
	return FromCents(out.RemainingCents), nil
}

// PlaceBets envia o lote de apostas simples com a referência de idempotência do boletim
func (c *Client) PlaceBets(ctx context.Context, key betslip.Key, ref string, bets []betslip.FlatBet) (Placed, error) {
	body := budgetdto.PlaceBetsRequest{
		UserID:        key.UserID,
		LeagueID:      key.LeagueID,
		Week:          key.Week,
		SubmissionRef: ref,
		Bets:          make([]budgetdto.BetItem, len(bets)),
	}
	for i, b := range bets {
		body.Bets[i] = budgetdto.BetItem{MatchupID: b.MatchupID, BettingOptionID: b.BettingOptionID, AmountCents: ToCents(b.Amount)}
	}
	return c.post(ctx, "/bets", body)
}

func (c *Client) PlaceParlay(ctx context.Context, key betslip.Key, ref string, p betslip.ParlayBet) (Placed, error) {
	return c.post(ctx, "/parlays", budgetdto.PlaceParlayRequest{
		UserID:           key.UserID,
		LeagueID:         key.LeagueID,
		Week:             key.Week,
		SubmissionRef:    ref,
		MatchupID:        p.MatchupID,
		BettingOptionIDs: p.BettingOptionIDs,
		AmountCents:      ToCents(p.Amount),
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) (Placed, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Placed{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return Placed{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out budgetdto.PlaceResponse
	if err := c.do(req, &out); err != nil {
		return Placed{}, err
	}
	return Placed{IDs: out.IDs, Remaining: FromCents(out.RemainingCents), Replayed: out.Replayed}, nil
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return fmt.Errorf("%w: budget http %d", ErrUnavailable, res.StatusCode)
	}
	if res.StatusCode >= 300 {
		var e budgetdto.ErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(res.StatusCode)
		}
		return &RejectedError{Status: res.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}

// ToCents converte dólares em centavos; stakes já chegam com no máximo 2 casas
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
