package dto

import (
	"time"

	"github.com/radieske/fantasy-betting-league/pkg/betslip"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

// Valores em dólares vão como string com 2 casas; odds decimais com 4

type SelectionView struct {
	OptionID     string   `json:"option_id"`
	GameID       string   `json:"game_id"`
	HomeTeam     string   `json:"home_team"`
	AwayTeam     string   `json:"away_team"`
	Kickoff      string   `json:"kickoff,omitempty"`
	Market       string   `json:"market"`
	OutcomeName  string   `json:"outcome_name"`
	Point        *float64 `json:"point,omitempty"`
	Bookmaker    string   `json:"bookmaker"`
	AmericanOdds int      `json:"american_odds"`
	Odds         string   `json:"odds"` // ex: "+150"
}

type EntryView struct {
	ID string `json:"id"`
	SelectionView
	Stake           string `json:"stake"`
	PotentialReturn string `json:"potential_return"`
}

type ParlayView struct {
	Legs         []SelectionView `json:"legs"`
	Stake        string          `json:"stake"`
	CombinedOdds string          `json:"combined_odds,omitempty"`
	Return       string          `json:"potential_return,omitempty"`
	Profit       string          `json:"potential_profit,omitempty"`
	CanPlace     bool            `json:"can_place"`
	Error        string          `json:"error,omitempty"`
}

type SlipView struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	LeagueID        string      `json:"league_id"`
	Week            int         `json:"week"`
	MatchupID       string      `json:"matchup_id"`
	Remaining       string      `json:"remaining"`
	Committed       string      `json:"committed"`
	Headroom        string      `json:"headroom"`
	PotentialReturn string      `json:"potential_return"`
	Entries         []EntryView `json:"entries"`
	Parlay          ParlayView  `json:"parlay"`
	Placing         bool        `json:"placing"`
}

// SlipResponse é a resposta de toda operação sobre o boletim
type SlipResponse struct {
	Slip   SlipView        `json:"slip"`
	Notice *betslip.Notice `json:"notice,omitempty"`
}

type PlaceResponse struct {
	Slip        SlipView `json:"slip"`
	BetIDs      []string `json:"bet_ids,omitempty"`
	ParlayID    string   `json:"parlay_id,omitempty"`
	BetsError   string   `json:"bets_error,omitempty"`
	ParlayError string   `json:"parlay_error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewSlipView(s *betslip.Slip) SlipView {
	v := SlipView{
		ID:              s.ID,
		UserID:          s.Key.UserID,
		LeagueID:        s.Key.LeagueID,
		Week:            s.Key.Week,
		MatchupID:       s.MatchupID,
		Remaining:       s.Remaining.StringFixed(2),
		Committed:       s.Committed().StringFixed(2),
		Headroom:        s.Headroom().StringFixed(2),
		PotentialReturn: s.PotentialReturn().StringFixed(2),
		Entries:         make([]EntryView, 0, len(s.Entries)),
		Parlay:          NewParlayView(s),
		Placing:         s.PlacingSince != nil,
	}
	for _, e := range s.Entries {
		v.Entries = append(v.Entries, EntryView{
			ID:              e.ID,
			SelectionView:   selection(e.Option, e.Game),
			Stake:           e.Stake.StringFixed(2),
			PotentialReturn: e.PotentialReturn().StringFixed(2),
		})
	}
	return v
}

// NewParlayView recalcula o parlay; com menos de 1 perna ou perna inválida o erro vai no campo Error
func NewParlayView(s *betslip.Slip) ParlayView {
	v := ParlayView{
		Legs:     make([]SelectionView, 0, len(s.Parlay.Legs)),
		Stake:    s.Parlay.Stake.StringFixed(2),
		CanPlace: s.CanPlaceParlay(),
	}
	for _, l := range s.Parlay.Legs {
		v.Legs = append(v.Legs, selection(l.Option, l.Game))
	}
	if len(s.Parlay.Legs) == 0 {
		return v
	}
	calc, err := s.ParlayCalculation()
	if err != nil {
		v.CanPlace = false
		v.Error = err.Error()
		return v
	}
	v.CombinedOdds = calc.CombinedOdds.StringFixed(4)
	v.Return = calc.Return.StringFixed(2)
	v.Profit = calc.Profit.StringFixed(2)
	return v
}

func selection(o odds.BettingOption, g betslip.Game) SelectionView {
	v := SelectionView{
		OptionID:     o.ID,
		GameID:       o.GameID,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
		Market:       string(o.MarketType),
		OutcomeName:  o.OutcomeName,
		Point:        o.Point,
		Bookmaker:    o.Bookmaker,
		AmericanOdds: o.AmericanOdds,
		Odds:         odds.FormatAmerican(o.AmericanOdds),
	}
	if !g.Kickoff.IsZero() {
		v.Kickoff = g.Kickoff.UTC().Format(time.RFC3339)
	}
	return v
}
