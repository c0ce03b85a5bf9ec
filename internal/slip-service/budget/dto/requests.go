package dto

// BetItem é uma aposta simples no formato do budget-service
type BetItem struct {
	MatchupID       string `json:"matchup_id"`
	BettingOptionID string `json:"betting_option_id"`
	AmountCents     int64  `json:"amount_cents"`
}

// PlaceBetsRequest representa o payload de POST /bets no budget-service.
type PlaceBetsRequest struct {
	UserID        string    `json:"user_id"`
	LeagueID      string    `json:"league_id"`
	Week          int       `json:"week"`
	SubmissionRef string    `json:"submission_ref"`
	Bets          []BetItem `json:"bets"`
}

// PlaceParlayRequest representa o payload de POST /parlays no budget-service.
type PlaceParlayRequest struct {
	UserID           string   `json:"user_id"`
	LeagueID         string   `json:"league_id"`
	Week             int      `json:"week"`
	SubmissionRef    string   `json:"submission_ref"`
	MatchupID        string   `json:"matchup_id"`
	BettingOptionIDs []string `json:"betting_option_ids"`
	AmountCents      int64    `json:"amount_cents"`
}
