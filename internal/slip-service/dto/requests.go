package dto

import "github.com/shopspring/decimal"

// OpenSlipRequest abre (ou recupera) o boletim da semana
type OpenSlipRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	LeagueID  string `json:"league_id" validate:"required"`
	Week      int    `json:"week" validate:"required,min=1"`
	MatchupID string `json:"matchup_id" validate:"required"`
}

type OptionRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// StakeRequest aceita número ou string ("12.50")
type StakeRequest struct {
	Stake *decimal.Decimal `json:"stake" validate:"required"`
}
