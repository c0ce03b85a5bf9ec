package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/dto"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

var ErrNotFound = errors.New("not found")

type ReadRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewReadRepo(db *sql.DB) *ReadRepo { return &ReadRepo{DB: db, Now: time.Now} }

const optionCols = `o.id, o.game_id, o.market_type, o.outcome_name, o.point, o.bookmaker,
	o.american_odds, o.decimal_odds, (o.is_locked OR g.kickoff <= $2) AS locked`

func (r *ReadRepo) ListGames(ctx context.Context, week int) ([]dto.Game, error) {
	const q = `
		SELECT id, week, home_team, away_team, kickoff
		FROM games
		WHERE week = $1
		ORDER BY kickoff, id;
	`
	rows, err := r.DB.QueryContext(ctx, q, week)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []dto.Game{}
	for rows.Next() {
		var g dto.Game
		if err := rows.Scan(&g.ID, &g.Week, &g.HomeTeam, &g.AwayTeam, &g.Kickoff); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetGame(ctx context.Context, id string) (dto.Game, error) {
	const q = `SELECT id, week, home_team, away_team, kickoff FROM games WHERE id = $1`
	var g dto.Game
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Week, &g.HomeTeam, &g.AwayTeam, &g.Kickoff)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.Game{}, ErrNotFound
	}
	return g, err
}

// OptionsByGame lista as opções atuais do jogo; opções substituídas ficam de fora
func (r *ReadRepo) OptionsByGame(ctx context.Context, gameID string) (dto.GameOptions, error) {
	g, err := r.GetGame(ctx, gameID)
	if err != nil {
		return dto.GameOptions{}, err
	}

	q := `
		SELECT ` + optionCols + `
		FROM betting_options o JOIN games g ON g.id = o.game_id
		WHERE o.game_id = $1 AND o.superseded_by IS NULL
		ORDER BY o.market_type, o.outcome_name, o.point NULLS FIRST, o.bookmaker;
	`
	rows, err := r.DB.QueryContext(ctx, q, gameID, r.Now().UTC())
	if err != nil {
		return dto.GameOptions{}, err
	}
	defer rows.Close()

	out := dto.GameOptions{Game: g, Options: []odds.BettingOption{}}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return dto.GameOptions{}, err
		}
		out.Options = append(out.Options, o)
	}
	return out, rows.Err()
}

// OptionByID devolve a opção mesmo se já foi substituída; a cotação é imutável
func (r *ReadRepo) OptionByID(ctx context.Context, id string) (dto.OptionView, error) {
	q := `
		SELECT ` + optionCols + `, g.id, g.week, g.home_team, g.away_team, g.kickoff
		FROM betting_options o JOIN games g ON g.id = o.game_id
		WHERE o.id = $1;
	`
	var (
		v      dto.OptionView
		market string
		point  sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx, q, id, r.Now().UTC()).Scan(
		&v.Option.ID, &v.Option.GameID, &market, &v.Option.OutcomeName, &point, &v.Option.Bookmaker,
		&v.Option.AmericanOdds, &v.Option.DecimalOdds, &v.Option.Locked,
		&v.Game.ID, &v.Game.Week, &v.Game.HomeTeam, &v.Game.AwayTeam, &v.Game.Kickoff,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.OptionView{}, ErrNotFound
	}
	if err != nil {
		return dto.OptionView{}, err
	}
	v.Option.MarketType = odds.Market(market)
	if point.Valid {
		p := point.Float64
		v.Option.Point = &p
	}
	return v, nil
}

func scanOption(rows *sql.Rows) (odds.BettingOption, error) {
	var (
		o      odds.BettingOption
		market string
		point  sql.NullFloat64
	)
	if err := rows.Scan(&o.ID, &o.GameID, &market, &o.OutcomeName, &point, &o.Bookmaker,
		&o.AmericanOdds, &o.DecimalOdds, &o.Locked); err != nil {
		return o, err
	}
	o.MarketType = odds.Market(market)
	if point.Valid {
		p := point.Float64
		o.Point = &p
	}
	return o, nil
}
