package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

// Postgres implementa o orçamento semanal e o registro de apostas em banco
type Postgres struct {
	db          *sql.DB
	weeklyCents int64
	now         func() time.Time
}

// NewPostgres recebe o valor do orçamento usado ao criar a semana
func NewPostgres(db *sql.DB, weeklyCents int64) *Postgres {
	return &Postgres{db: db, weeklyCents: weeklyCents, now: time.Now}
}

var (
	ErrInsufficientBudget = errors.New("insufficient weekly budget")
	ErrUnknownOption      = errors.New("unknown betting option")
	ErrOptionLocked       = errors.New("betting option is locked")
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
)

const (
	insertBudgetSQL = `INSERT INTO weekly_budgets(id, user_id, league_id, week, remaining_cents, version)
		VALUES($1,$2,$3,$4,$5,1) ON CONFLICT (user_id, league_id, week) DO NOTHING`
	selectBudgetSQL       = `SELECT id, remaining_cents FROM weekly_budgets WHERE user_id=$1 AND league_id=$2 AND week=$3`
	selectBudgetLockedSQL = selectBudgetSQL + ` FOR UPDATE`
	selectSubmissionSQL   = `SELECT result_ids FROM submissions WHERE user_id=$1 AND submission_ref=$2 AND kind=$3`
	insertSubmissionSQL   = `INSERT INTO submissions(user_id, submission_ref, kind, result_ids) VALUES($1,$2,$3,$4)`
	debitBudgetSQL        = `UPDATE weekly_budgets SET remaining_cents = remaining_cents - $1, version = version + 1 WHERE id=$2`
	insertLedgerSQL       = `INSERT INTO budget_ledger(budget_id, operation_type, amount_cents, description) VALUES($1,'DEBIT',$2,$3)`

	// opção travada se o flag foi setado ou se o kickoff já passou e o job ainda não rodou
	selectOptionsSQL = `SELECT o.id, o.game_id, o.market_type, o.outcome_name, o.point, o.bookmaker, o.american_odds,
		(o.is_locked OR g.kickoff <= $2) AS locked
		FROM betting_options o JOIN games g ON g.id = o.game_id
		WHERE o.id = ANY($1)`
)

// GetOrCreateBudget retorna o orçamento da semana, criando-o com o valor cheio na primeira consulta.
// A criação preguiçosa é o reset semanal.
func (p *Postgres) GetOrCreateBudget(ctx context.Context, k Key) (Budget, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Budget{}, err
	}
	defer tx.Rollback()

	b, err := p.ensureBudget(ctx, tx, k, selectBudgetSQL)
	if err != nil {
		return Budget{}, err
	}

	if err = tx.Commit(); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// History lista apostas simples e parlays da semana
func (p *Postgres) History(ctx context.Context, k Key) ([]BetRecord, []ParlayRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, matchup_id, betting_option_id, american_odds, amount_cents, status, created_at
		FROM bets WHERE user_id=$1 AND league_id=$2 AND week=$3
		ORDER BY created_at`, k.UserID, k.LeagueID, k.Week)
	if err != nil {
		return nil, nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	bets := []BetRecord{}
	for rows.Next() {
		var b BetRecord
		if err := rows.Scan(&b.ID, &b.MatchupID, &b.BettingOptionID, &b.AmericanOdds, &b.AmountCents, &b.Status, &b.CreatedAt); err != nil {
			return nil, nil, err
		}
		bets = append(bets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	prows, err := p.db.QueryContext(ctx, `
		SELECT p.id, p.matchup_id, p.combined_odds, p.amount_cents, p.status, p.created_at,
			array_agg(l.betting_option_id ORDER BY l.leg_number)
		FROM parlays p JOIN parlay_legs l ON l.parlay_id = p.id
		WHERE p.user_id=$1 AND p.league_id=$2 AND p.week=$3
		GROUP BY p.id
		ORDER BY p.created_at`, k.UserID, k.LeagueID, k.Week)
	if err != nil {
		return nil, nil, fmt.Errorf("query parlays: %w", err)
	}
	defer prows.Close()

	parlays := []ParlayRecord{}
	for prows.Next() {
		var pr ParlayRecord
		if err := prows.Scan(&pr.ID, &pr.MatchupID, &pr.CombinedOdds, &pr.AmountCents, &pr.Status, &pr.CreatedAt,
			pq.Array(&pr.BettingOptionIDs)); err != nil {
			return nil, nil, err
		}
		parlays = append(parlays, pr)
	}
	return bets, parlays, prows.Err()
}

// PlaceBets grava o lote de apostas simples e debita o orçamento
// Idempotente por (user_id, submission_ref): um reenvio devolve os mesmos ids sem novo débito
func (p *Postgres) PlaceBets(ctx context.Context, sub BetsSubmission) (BetsPlaced, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return BetsPlaced{}, err
	}
	defer tx.Rollback()

	b, err := p.ensureBudget(ctx, tx, sub.Key, selectBudgetLockedSQL)
	if err != nil {
		return BetsPlaced{}, err
	}

	if ids, ok, err := p.findSubmission(ctx, tx, sub.Key.UserID, sub.SubmissionRef, kindBets); err != nil {
		return BetsPlaced{}, err
	} else if ok {
		out := BetsPlaced{RemainingCents: b.RemainingCents, Replayed: true}
		for _, id := range ids {
			out.Bets = append(out.Bets, BetRecord{ID: id})
		}
		return out, nil
	}

	optionIDs := make([]string, len(sub.Bets))
	for i, fb := range sub.Bets {
		optionIDs[i] = fb.BettingOptionID
	}
	options, err := p.loadOptions(ctx, tx, optionIDs)
	if err != nil {
		return BetsPlaced{}, err
	}
	for i, fb := range sub.Bets {
		o := options[fb.BettingOptionID]
		if o.Locked {
			return BetsPlaced{}, fmt.Errorf("bet %d: %w", i+1, ErrOptionLocked)
		}
		if err := o.Validate(); err != nil {
			return BetsPlaced{}, fmt.Errorf("bet %d: %w", i+1, err)
		}
	}

	total, err := sumWithin(sub.Bets, b.RemainingCents)
	if err != nil {
		return BetsPlaced{}, err
	}

	if _, err = tx.ExecContext(ctx, debitBudgetSQL, total, b.ID); err != nil {
		return BetsPlaced{}, err
	}

	now := p.now().UTC()
	out := BetsPlaced{RemainingCents: b.RemainingCents - total}
	ids := make([]string, len(sub.Bets))
	for i, fb := range sub.Bets {
		rec := BetRecord{
			ID:              uuid.NewString(),
			MatchupID:       fb.MatchupID,
			BettingOptionID: fb.BettingOptionID,
			AmericanOdds:    options[fb.BettingOptionID].AmericanOdds,
			AmountCents:     fb.AmountCents,
			Status:          StatusPending,
			CreatedAt:       now,
		}
		if _, err = tx.ExecContext(ctx, `INSERT INTO bets(id, budget_id, user_id, league_id, week, matchup_id, betting_option_id, american_odds, amount_cents, submission_ref, status, created_at)
			VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			rec.ID, b.ID, sub.Key.UserID, sub.Key.LeagueID, sub.Key.Week, rec.MatchupID, rec.BettingOptionID,
			rec.AmericanOdds, rec.AmountCents, sub.SubmissionRef, rec.Status, rec.CreatedAt); err != nil {
			return BetsPlaced{}, err
		}
		ids[i] = rec.ID
		out.Bets = append(out.Bets, rec)
	}

	if _, err = tx.ExecContext(ctx, insertLedgerSQL, b.ID, total, "bets:"+sub.SubmissionRef); err != nil {
		return BetsPlaced{}, err
	}
	if _, err = tx.ExecContext(ctx, insertSubmissionSQL, sub.Key.UserID, sub.SubmissionRef, kindBets, pq.Array(ids)); err != nil {
		return BetsPlaced{}, err
	}

	if err = tx.Commit(); err != nil {
		return BetsPlaced{}, err
	}
	return out, nil
}

// PlaceParlay revalida o parlay com as odds gravadas e debita o orçamento
// Idempotente por (user_id, submission_ref) como PlaceBets
func (p *Postgres) PlaceParlay(ctx context.Context, sub ParlaySubmission) (ParlayPlaced, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return ParlayPlaced{}, err
	}
	defer tx.Rollback()

	b, err := p.ensureBudget(ctx, tx, sub.Key, selectBudgetLockedSQL)
	if err != nil {
		return ParlayPlaced{}, err
	}

	if ids, ok, err := p.findSubmission(ctx, tx, sub.Key.UserID, sub.SubmissionRef, kindParlay); err != nil {
		return ParlayPlaced{}, err
	} else if ok {
		out := ParlayPlaced{RemainingCents: b.RemainingCents, Replayed: true}
		if len(ids) > 0 {
			out.Parlay.ID = ids[0]
		}
		return out, nil
	}

	options, err := p.loadOptions(ctx, tx, sub.BettingOptionIDs)
	if err != nil {
		return ParlayPlaced{}, err
	}
	legs := make([]odds.BettingOption, len(sub.BettingOptionIDs))
	for i, id := range sub.BettingOptionIDs {
		legs[i] = options[id]
	}

	calc, err := parlay.ValidatePlacement(decimal.New(sub.AmountCents, -2), legs)
	if err != nil {
		return ParlayPlaced{}, err
	}

	if sub.AmountCents <= 0 {
		return ParlayPlaced{}, ErrInvalidAmount
	}
	if b.RemainingCents < sub.AmountCents {
		return ParlayPlaced{}, ErrInsufficientBudget
	}

	if _, err = tx.ExecContext(ctx, debitBudgetSQL, sub.AmountCents, b.ID); err != nil {
		return ParlayPlaced{}, err
	}

	rec := ParlayRecord{
		ID:               uuid.NewString(),
		MatchupID:        sub.MatchupID,
		BettingOptionIDs: sub.BettingOptionIDs,
		CombinedOdds:     calc.CombinedOdds,
		AmountCents:      sub.AmountCents,
		Status:           StatusPending,
		CreatedAt:        p.now().UTC(),
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO parlays(id, budget_id, user_id, league_id, week, matchup_id, combined_odds, amount_cents, submission_ref, status, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, b.ID, sub.Key.UserID, sub.Key.LeagueID, sub.Key.Week, rec.MatchupID, rec.CombinedOdds,
		rec.AmountCents, sub.SubmissionRef, rec.Status, rec.CreatedAt); err != nil {
		return ParlayPlaced{}, err
	}
	for _, l := range calc.Legs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO parlay_legs(parlay_id, leg_number, betting_option_id, american_odds) VALUES($1,$2,$3,$4)`,
			rec.ID, l.Number, l.OptionID, l.AmericanOdds); err != nil {
			return ParlayPlaced{}, err
		}
	}

	if _, err = tx.ExecContext(ctx, insertLedgerSQL, b.ID, sub.AmountCents, "parlay:"+sub.SubmissionRef); err != nil {
		return ParlayPlaced{}, err
	}
	if _, err = tx.ExecContext(ctx, insertSubmissionSQL, sub.Key.UserID, sub.SubmissionRef, kindParlay, pq.Array([]string{rec.ID})); err != nil {
		return ParlayPlaced{}, err
	}

	if err = tx.Commit(); err != nil {
		return ParlayPlaced{}, err
	}
	return ParlayPlaced{Parlay: rec, RemainingCents: b.RemainingCents - sub.AmountCents}, nil
}

// ensureBudget cria a linha da semana se faltar e lê o saldo com a query informada
func (p *Postgres) ensureBudget(ctx context.Context, tx *sql.Tx, k Key, selectSQL string) (Budget, error) {
	if _, err := tx.ExecContext(ctx, insertBudgetSQL, uuid.NewString(), k.UserID, k.LeagueID, k.Week, p.weeklyCents); err != nil {
		return Budget{}, fmt.Errorf("create weekly budget: %w", err)
	}
	b := Budget{Key: k}
	if err := tx.QueryRowContext(ctx, selectSQL, k.UserID, k.LeagueID, k.Week).Scan(&b.ID, &b.RemainingCents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Budget{}, ErrNotFound
		}
		return Budget{}, err
	}
	return b, nil
}

func (p *Postgres) findSubmission(ctx context.Context, tx *sql.Tx, userID, ref, kind string) ([]string, bool, error) {
	var ids []string
	err := tx.QueryRowContext(ctx, selectSubmissionSQL, userID, ref, kind).Scan(pq.Array(&ids))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// loadOptions busca as opções referenciadas; qualquer id desconhecido é erro
func (p *Postgres) loadOptions(ctx context.Context, tx *sql.Tx, ids []string) (map[string]odds.BettingOption, error) {
	rows, err := tx.QueryContext(ctx, selectOptionsSQL, pq.Array(ids), p.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer rows.Close()

	out := make(map[string]odds.BettingOption, len(ids))
	for rows.Next() {
		var (
			o      odds.BettingOption
			market string
			point  sql.NullFloat64
		)
		if err := rows.Scan(&o.ID, &o.GameID, &market, &o.OutcomeName, &point, &o.Bookmaker, &o.AmericanOdds, &o.Locked); err != nil {
			return nil, err
		}
		o.MarketType = odds.Market(market)
		if point.Valid {
			v := point.Float64
			o.Point = &v
		}
		out[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
	}
	return out, nil
}

// sumWithin soma os valores parando assim que o total passaria do saldo;
// total nunca excede remaining, então a soma não estoura int64
func sumWithin(bets []FlatBet, remaining int64) (int64, error) {
	var total int64
	for i, fb := range bets {
		if fb.AmountCents <= 0 {
			return 0, fmt.Errorf("bet %d: %w", i+1, ErrInvalidAmount)
		}
		if fb.AmountCents > remaining-total {
			return 0, ErrInsufficientBudget
		}
		total += fb.AmountCents
	}
	return total, nil
}
