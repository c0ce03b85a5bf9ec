// Package parlay combina pernas de apostas em um único preço multiplicativo.
//
// Todas as funções são puras: mesma entrada, mesma saída, sem estado e sem I/O.
package parlay

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

const (
	MinLegsPreview = 1
	MinLegsPlace   = 2
	MaxLegs        = 10

	oddsPlaces  = 4
	moneyPlaces = 2
)

var (
	ErrNoLegs        = errors.New("parlay has no legs")
	ErrTooFewLegs    = fmt.Errorf("parlay needs at least %d legs to be placed", MinLegsPlace)
	ErrTooManyLegs   = fmt.Errorf("parlay cannot have more than %d legs", MaxLegs)
	ErrLockedLeg     = errors.New("parlay leg is locked")
	ErrDuplicateLeg  = errors.New("parlay already has a leg on this outcome")
	ErrNegativeStake = errors.New("stake cannot be negative")
	ErrZeroStake     = errors.New("stake must be greater than zero")
)

// Leg é o detalhamento de uma perna para exibição e para o payload de envio
type Leg struct {
	Number       int         `json:"number"` // 1-indexed, na ordem recebida
	OptionID     string      `json:"option_id"`
	GameID       string      `json:"game_id"`
	MarketType   odds.Market `json:"market_type"`
	OutcomeName  string      `json:"outcome_name"`
	Point        *float64    `json:"point,omitempty"`
	Bookmaker    string      `json:"bookmaker"`
	AmericanOdds int         `json:"american_odds"`
	DecimalOdds  float64     `json:"decimal_odds"`
}

// Calculation é sempre derivada das pernas e do stake atuais; nunca é persistida
type Calculation struct {
	Stake        decimal.Decimal `json:"stake"`
	CombinedOdds decimal.Decimal `json:"combined_odds"` // 4 casas
	Return       decimal.Decimal `json:"return"`        // 2 casas
	Profit       decimal.Decimal `json:"profit"`        // 2 casas
	Legs         []Leg           `json:"legs"`
}

// CanPreview indica se n pernas bastam para exibir uma prévia
func CanPreview(n int) bool { return n >= MinLegsPreview && n <= MaxLegs }

// CanPlace indica se n pernas bastam para enviar o parlay
func CanPlace(n int) bool { return n >= MinLegsPlace && n <= MaxLegs }

// Calculate calcula odds combinadas, retorno e lucro.
// Não verifica pernas duplicadas: isso é feito por CheckDuplicate antes de adicionar a perna.
func Calculate(stake decimal.Decimal, legs []odds.BettingOption) (Calculation, error) {
	switch {
	case len(legs) == 0:
		return Calculation{}, ErrNoLegs
	case len(legs) > MaxLegs:
		return Calculation{}, ErrTooManyLegs
	}
	if stake.IsNegative() {
		return Calculation{}, ErrNegativeStake
	}

	combined := decimal.NewFromInt(1)
	out := make([]Leg, 0, len(legs))
	for i, l := range legs {
		if l.Locked {
			return Calculation{}, fmt.Errorf("leg %d (%s): %w", i+1, l.ID, ErrLockedLeg)
		}
		dec, err := odds.Decimal(l.AmericanOdds)
		if err != nil {
			return Calculation{}, fmt.Errorf("leg %d (%s): %w", i+1, l.ID, err)
		}
		combined = combined.Mul(dec)
		out = append(out, Leg{
			Number:       i + 1,
			OptionID:     l.ID,
			GameID:       l.GameID,
			MarketType:   l.MarketType,
			OutcomeName:  l.OutcomeName,
			Point:        l.Point,
			Bookmaker:    l.Bookmaker,
			AmericanOdds: l.AmericanOdds,
			DecimalOdds:  dec.InexactFloat64(),
		})
	}

	// retorno usa o produto sem arredondar; só a exibição fica com 4 casas
	ret := stake.Mul(combined).Round(moneyPlaces)
	return Calculation{
		Stake:        stake,
		CombinedOdds: combined.Round(oddsPlaces),
		Return:       ret,
		Profit:       ret.Sub(stake).Round(moneyPlaces),
		Legs:         out,
	}, nil
}

// CheckDuplicate rejeita candidate se já existe perna no mesmo (jogo, mercado, resultado)
func CheckDuplicate(legs []odds.BettingOption, candidate odds.BettingOption) error {
	key := candidate.Outcome()
	for _, l := range legs {
		if l.Outcome() == key {
			return fmt.Errorf("%s %s %s: %w", key.GameID, key.Market, key.Outcome, ErrDuplicateLeg)
		}
	}
	return nil
}

// ValidatePlacement aplica todas as regras de envio: 2..10 pernas, sem duplicadas,
// sem pernas travadas e stake positivo
func ValidatePlacement(stake decimal.Decimal, legs []odds.BettingOption) (Calculation, error) {
	if len(legs) > 0 && len(legs) < MinLegsPlace {
		return Calculation{}, ErrTooFewLegs
	}
	for i := range legs {
		if err := CheckDuplicate(legs[:i], legs[i]); err != nil {
			return Calculation{}, err
		}
	}
	calc, err := Calculate(stake, legs)
	if err != nil {
		return Calculation{}, err
	}
	if !stake.IsPositive() {
		return Calculation{}, ErrZeroStake
	}
	return calc, nil
}
