package events

// BetPlaced é publicado pelo budget-service para cada aposta simples gravada
type BetPlaced struct {
	BetID           string `json:"bet_id"`
	UserID          string `json:"user_id"`
	LeagueID        string `json:"league_id"`
	Week            int    `json:"week"`
	MatchupID       string `json:"matchup_id"`
	BettingOptionID string `json:"betting_option_id"`
	AmericanOdds    int    `json:"american_odds"`
	AmountCents     int64  `json:"amount_cents"`
	SubmissionRef   string `json:"submission_ref"`
	TsUnixMs        int64  `json:"ts_unix_ms"`
}

// ParlayPlaced é publicado pelo budget-service quando um parlay é gravado
type ParlayPlaced struct {
	ParlayID         string   `json:"parlay_id"`
	UserID           string   `json:"user_id"`
	LeagueID         string   `json:"league_id"`
	Week             int      `json:"week"`
	MatchupID        string   `json:"matchup_id"`
	BettingOptionIDs []string `json:"betting_option_ids"`
	CombinedOdds     string   `json:"combined_odds"` // decimal com 4 casas
	AmountCents      int64    `json:"amount_cents"`
	SubmissionRef    string   `json:"submission_ref"`
	TsUnixMs         int64    `json:"ts_unix_ms"`
}
