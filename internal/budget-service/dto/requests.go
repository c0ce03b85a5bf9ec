package dto

type BetItem struct {
	MatchupID       string `json:"matchup_id" validate:"required"`
	BettingOptionID string `json:"betting_option_id" validate:"required"`
	AmountCents     int64  `json:"amount_cents" validate:"gt=0"`
}

// PlaceBetsRequest envia todas as apostas simples do boletim de uma vez
type PlaceBetsRequest struct {
	UserID        string    `json:"user_id" validate:"required"`
	LeagueID      string    `json:"league_id" validate:"required"`
	Week          int       `json:"week" validate:"gte=1,lte=25"`
	SubmissionRef string    `json:"submission_ref" validate:"required"` // idempotência
	Bets          []BetItem `json:"bets" validate:"required,min=1,dive"`
}

// PlaceParlayRequest: a contagem de pernas é validada pelo domínio (422), não aqui
type PlaceParlayRequest struct {
	UserID           string   `json:"user_id" validate:"required"`
	LeagueID         string   `json:"league_id" validate:"required"`
	Week             int      `json:"week" validate:"gte=1,lte=25"`
	SubmissionRef    string   `json:"submission_ref" validate:"required"`
	MatchupID        string   `json:"matchup_id" validate:"required"`
	BettingOptionIDs []string `json:"betting_option_ids" validate:"required,dive,required"`
	AmountCents      int64    `json:"amount_cents" validate:"gt=0"`
}
