package repo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Key identifica o orçamento semanal de um usuário numa liga
type Key struct {
	UserID   string
	LeagueID string
	Week     int
}

type Budget struct {
	ID             string
	Key            Key
	RemainingCents int64
}

type FlatBet struct {
	MatchupID       string
	BettingOptionID string
	AmountCents     int64
}

// BetsSubmission é um lote de apostas simples enviado de uma vez pelo boletim
type BetsSubmission struct {
	Key           Key
	SubmissionRef string
	Bets          []FlatBet
}

type ParlaySubmission struct {
	Key              Key
	SubmissionRef    string
	MatchupID        string
	BettingOptionIDs []string
	AmountCents      int64
}

// BetRecord é a aposta simples persistida
type BetRecord struct {
	ID              string
	MatchupID       string
	BettingOptionID string
	AmericanOdds    int
	AmountCents     int64
	Status          string
	CreatedAt       time.Time
}

type ParlayRecord struct {
	ID               string
	MatchupID        string
	BettingOptionIDs []string
	CombinedOdds     decimal.Decimal
	AmountCents      int64
	Status           string
	CreatedAt        time.Time
}

// BetsPlaced é o resultado de PlaceBets. Em replay só os ids são preenchidos.
type BetsPlaced struct {
	Bets           []BetRecord
	RemainingCents int64
	Replayed       bool
}

type ParlayPlaced struct {
	Parlay         ParlayRecord
	RemainingCents int64
	Replayed       bool
}

const (
	StatusPending = "PENDING"

	kindBets   = "BETS"
	kindParlay = "PARLAY"
)
