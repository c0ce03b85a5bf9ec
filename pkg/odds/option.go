package odds

import (
	"errors"
	"strconv"
)

// Market identifica o tipo de mercado de uma opção de aposta
type Market string

const (
	MarketMoneyline Market = "moneyline"
	MarketSpread    Market = "spread"
	MarketTotal     Market = "total"
	MarketTeamTotal Market = "team_total"

	// Player props
	MarketPlayerPassYards  Market = "player_pass_yds"
	MarketPlayerRushYards  Market = "player_rush_yds"
	MarketPlayerRecYards   Market = "player_rec_yds"
	MarketPlayerReceptions Market = "player_receptions"
	MarketPlayerAnytimeTD  Market = "player_anytime_td"
)

var knownMarkets = map[Market]struct{}{
	MarketMoneyline:        {},
	MarketSpread:           {},
	MarketTotal:            {},
	MarketTeamTotal:        {},
	MarketPlayerPassYards:  {},
	MarketPlayerRushYards:  {},
	MarketPlayerRecYards:   {},
	MarketPlayerReceptions: {},
	MarketPlayerAnytimeTD:  {},
}

// Valid indica se o mercado é um dos tipos suportados
func (m Market) Valid() bool {
	_, ok := knownMarkets[m]
	return ok
}

// IsPlayerProp indica se o mercado é uma prop de jogador
func (m Market) IsPlayerProp() bool {
	switch m {
	case MarketPlayerPassYards, MarketPlayerRushYards, MarketPlayerRecYards,
		MarketPlayerReceptions, MarketPlayerAnytimeTD:
		return true
	}
	return false
}

var ErrUnknownMarket = errors.New("unknown market type")

// BettingOption é uma cotação imutável de um resultado, de um mercado, de um jogo, de uma casa.
// Quando a odd se move a opção é substituída por outra, nunca alterada.
type BettingOption struct {
	ID           string   `json:"id"`
	GameID       string   `json:"game_id"`
	MarketType   Market   `json:"market_type"`
	OutcomeName  string   `json:"outcome_name"`
	Point        *float64 `json:"point,omitempty"`
	Bookmaker    string   `json:"bookmaker"`
	AmericanOdds int      `json:"american_odds"`
	DecimalOdds  float64  `json:"decimal_odds"`
	Locked       bool     `json:"locked"` // true depois do kickoff
}

// Validate confere os invariantes de uma opção recebida do backend
func (o BettingOption) Validate() error {
	if o.AmericanOdds == 0 {
		return ErrZeroAmericanOdds
	}
	if !o.MarketType.Valid() {
		return ErrUnknownMarket
	}
	return nil
}

// Quote retorna a cotação da opção para comparação entre casas
func (o BettingOption) Quote() Quote {
	return Quote{Bookmaker: o.Bookmaker, AmericanOdds: o.AmericanOdds, DecimalOdds: o.DecimalOdds}
}

// Outcome retorna a tripla (jogo, mercado, resultado) da opção
func (o BettingOption) Outcome() OutcomeKey {
	return OutcomeKey{GameID: o.GameID, Market: o.MarketType, Outcome: o.OutcomeName}
}

// OutcomeKey identifica um resultado independente de casa e de linha
type OutcomeKey struct {
	GameID  string
	Market  Market
	Outcome string
}

// lineKey separa linhas diferentes do mesmo resultado (ex.: over 44.5 vs over 45.5)
type lineKey struct {
	OutcomeKey
	point string
}

func lineKeyOf(o BettingOption) lineKey {
	k := lineKey{OutcomeKey: o.Outcome()}
	if o.Point != nil {
		k.point = strconv.FormatFloat(*o.Point, 'f', -1, 64)
	}
	return k
}

// Quote é a cotação de uma casa para um resultado
type Quote struct {
	Bookmaker    string  `json:"bookmaker"`
	AmericanOdds int     `json:"american_odds"`
	DecimalOdds  float64 `json:"decimal_odds"`
}
