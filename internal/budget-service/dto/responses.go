package dto

import "time"

type BetView struct {
	ID              string    `json:"id"`
	MatchupID       string    `json:"matchup_id"`
	BettingOptionID string    `json:"betting_option_id"`
	AmericanOdds    int       `json:"american_odds"`
	AmountCents     int64     `json:"amount_cents"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type ParlayView struct {
	ID               string    `json:"id"`
	MatchupID        string    `json:"matchup_id"`
	BettingOptionIDs []string  `json:"betting_option_ids"`
	CombinedOdds     string    `json:"combined_odds"`
	AmountCents      int64     `json:"amount_cents"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

type BudgetResponse struct {
	UserID         string       `json:"user_id"`
	LeagueID       string       `json:"league_id"`
	Week           int          `json:"week"`
	RemainingCents int64        `json:"remaining_cents"`
	Bets           []BetView    `json:"bets"`
	Parlays        []ParlayView `json:"parlays"`
}

// PlaceResponse serve para /bets e /parlays
type PlaceResponse struct {
	IDs            []string `json:"ids"`
	RemainingCents int64    `json:"remaining_cents"`
	Replayed       bool     `json:"replayed"`
	CombinedOdds   string   `json:"combined_odds,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
