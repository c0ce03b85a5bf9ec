package dto

import (
	"time"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

// Game representa um jogo da semana
type Game struct {
	ID       string    `json:"id"`
	Week     int       `json:"week"`
	HomeTeam string    `json:"home_team"`
	AwayTeam string    `json:"away_team"`
	Kickoff  time.Time `json:"kickoff"`
}

// GameOptions são as opções atuais (não substituídas) de um jogo
type GameOptions struct {
	Game    Game                 `json:"game"`
	Options []odds.BettingOption `json:"options"`
}

// OptionView é uma opção com o jogo ao qual pertence; é o que o boletim guarda
type OptionView struct {
	Option odds.BettingOption `json:"option"`
	Game   Game               `json:"game"`
}
