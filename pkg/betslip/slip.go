// Package betslip mantém o boletim de apostas em andamento de um usuário:
// apostas simples, pernas de parlay e os totais contra o saldo semanal.
package betslip

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

var (
	DefaultStake     = decimal.NewFromInt(10)
	PlacementTimeout = 30 * time.Second
)

var (
	ErrOptionLocked       = errors.New("betting option is locked")
	ErrEntryNotFound      = errors.New("slip entry not found")
	ErrLegNotFound        = errors.New("parlay leg not found")
	ErrStakeExceedsBudget = errors.New("stake exceeds remaining weekly budget")
	ErrPlacementInFlight  = errors.New("placement already in flight")
	ErrNothingToPlace     = errors.New("slip has nothing to place")
	ErrOverBudget         = errors.New("slip stakes exceed remaining weekly budget")
)

var (
	slipNamespace = uuid.MustParse("5b0f6a3e-8d8e-4c1e-9a53-2f4f0f0c7d11")
	newEntryID    = uuid.NewString
)

// Key identifica o boletim de um usuário em uma liga numa semana
type Key struct {
	UserID   string `json:"user_id"`
	LeagueID string `json:"league_id"`
	Week     int    `json:"week"`
}

// SlipID é determinístico: a mesma chave sempre resolve para o mesmo boletim
func (k Key) SlipID() string {
	return uuid.NewSHA1(slipNamespace, []byte(fmt.Sprintf("%s|%s|%d", k.LeagueID, k.UserID, k.Week))).String()
}

// Game traz os dados do jogo exibidos junto da seleção
type Game struct {
	GameID   string    `json:"game_id"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Kickoff  time.Time `json:"kickoff"`
}

// Entry é uma aposta simples; a opção é uma cópia do momento da seleção
type Entry struct {
	ID     string             `json:"id"`
	Option odds.BettingOption `json:"option"`
	Game   Game               `json:"game"`
	Stake  decimal.Decimal    `json:"stake"`
}

// PotentialReturn retorna stake × odd decimal, arredondado no centavo
func (e Entry) PotentialReturn() decimal.Decimal {
	d, err := odds.Decimal(e.Option.AmericanOdds)
	if err != nil {
		return decimal.Zero
	}
	return e.Stake.Mul(d).Round(2)
}

type Leg struct {
	Option odds.BettingOption `json:"option"`
	Game   Game               `json:"game"`
}

type Parlay struct {
	Legs  []Leg           `json:"legs"`
	Stake decimal.Decimal `json:"stake"`
}

// SubmissionRefs são as chaves de idempotência enviadas ao backend; só mudam após sucesso confirmado
type SubmissionRefs struct {
	Bets   string `json:"bets"`
	Parlay string `json:"parlay"`
}

type Slip struct {
	ID           string          `json:"id"`
	Key          Key             `json:"key"`
	MatchupID    string          `json:"matchup_id"`
	Remaining    decimal.Decimal `json:"remaining"` // saldo semanal restante informado pelo backend
	Entries      []Entry         `json:"entries"`
	Parlay       Parlay          `json:"parlay"`
	Refs         SubmissionRefs  `json:"refs"`
	PlacingSince *time.Time      `json:"placing_since,omitempty"`
}

// New cria um boletim vazio para a chave e o saldo informados
func New(key Key, matchupID string, remaining decimal.Decimal) *Slip {
	return &Slip{
		ID:        key.SlipID(),
		Key:       key,
		MatchupID: matchupID,
		Remaining: remaining,
		Entries:   []Entry{},
		Refs:      SubmissionRefs{Bets: uuid.NewString(), Parlay: uuid.NewString()},
	}
}

// Committed soma os stakes das apostas simples e do parlay
func (s *Slip) Committed() decimal.Decimal {
	total := s.Parlay.Stake
	for _, e := range s.Entries {
		total = total.Add(e.Stake)
	}
	return total
}

// Headroom é quanto ainda pode ser apostado sem estourar o saldo semanal
func (s *Slip) Headroom() decimal.Decimal {
	return s.Remaining.Sub(s.Committed())
}

// PotentialReturn soma os retornos das apostas simples e do parlay (se calculável)
func (s *Slip) PotentialReturn() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.PotentialReturn())
	}
	if calc, err := s.ParlayCalculation(); err == nil {
		total = total.Add(calc.Return)
	}
	return total
}

func (s *Slip) entryIndex(id string) int {
	for i, e := range s.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Slip) optionIndex(optionID string) int {
	for i, e := range s.Entries {
		if e.Option.ID == optionID {
			return i
		}
	}
	return -1
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
