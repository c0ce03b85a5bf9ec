package dto

// BudgetResponse é a parte de GET /budgets/{user}/weeks/{week} usada pelo boletim.
type BudgetResponse struct {
	RemainingCents int64 `json:"remaining_cents"`
}

// PlaceResponse representa a resposta de /bets e /parlays.
type PlaceResponse struct {
	IDs            []string `json:"ids"`
	RemainingCents int64    `json:"remaining_cents"`
	Replayed       bool     `json:"replayed"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
