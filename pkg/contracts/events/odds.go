package events

import "time"

// OddsMoved chega no tópico "odds_moved": uma opção foi substituída por outra com nova odd.
// A opção antiga nunca é alterada, apenas deixa de ser a atual.
type OddsMoved struct {
	GameID       string    `json:"game_id"`
	OldOptionID  string    `json:"old_option_id,omitempty"`
	NewOptionID  string    `json:"new_option_id"`
	MarketType   string    `json:"market_type"`
	OutcomeName  string    `json:"outcome_name"`
	Bookmaker    string    `json:"bookmaker"`
	AmericanOdds int       `json:"american_odds"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OptionsLocked é emitido quando o jogo começa e todas as opções dele ficam travadas
type OptionsLocked struct {
	GameID   string    `json:"game_id"`
	Options  int64     `json:"options"`
	LockedAt time.Time `json:"locked_at"`
}

// Broadcast é a mensagem enviada aos clientes WebSocket
type Broadcast struct {
	Type   string `json:"type"` // "odds_moved" | "options_locked"
	GameID string `json:"game_id"`
	Data   any    `json:"data"`
}
