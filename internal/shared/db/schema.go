package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema é idempotente; budget-service e odds-service aplicam na subida
const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         TEXT PRIMARY KEY,
	week       INT NOT NULL,
	home_team  TEXT NOT NULL,
	away_team  TEXT NOT NULL,
	kickoff    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_week ON games(week);
CREATE INDEX IF NOT EXISTS idx_games_kickoff ON games(kickoff);

CREATE TABLE IF NOT EXISTS betting_options (
	id            TEXT PRIMARY KEY,
	game_id       TEXT NOT NULL REFERENCES games(id),
	market_type   TEXT NOT NULL,
	outcome_name  TEXT NOT NULL,
	point         DOUBLE PRECISION,
	bookmaker     TEXT NOT NULL,
	american_odds INT NOT NULL CHECK (american_odds <> 0),
	decimal_odds  NUMERIC(10,4) NOT NULL CHECK (decimal_odds > 1),
	is_locked     BOOLEAN NOT NULL DEFAULT FALSE,
	superseded_by TEXT REFERENCES betting_options(id),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_options_game_current ON betting_options(game_id) WHERE superseded_by IS NULL;

CREATE TABLE IF NOT EXISTS weekly_budgets (
	id              UUID PRIMARY KEY,
	user_id         TEXT NOT NULL,
	league_id       TEXT NOT NULL,
	week            INT NOT NULL,
	remaining_cents BIGINT NOT NULL CHECK (remaining_cents >= 0),
	version         BIGINT NOT NULL DEFAULT 1,
	UNIQUE (user_id, league_id, week)
);

CREATE TABLE IF NOT EXISTS budget_ledger (
	id             BIGSERIAL PRIMARY KEY,
	budget_id      UUID NOT NULL REFERENCES weekly_budgets(id),
	operation_type TEXT NOT NULL,
	amount_cents   BIGINT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bets (
	id                UUID PRIMARY KEY,
	budget_id         UUID NOT NULL REFERENCES weekly_budgets(id),
	user_id           TEXT NOT NULL,
	league_id         TEXT NOT NULL,
	week              INT NOT NULL,
	matchup_id        TEXT NOT NULL,
	betting_option_id TEXT NOT NULL REFERENCES betting_options(id),
	american_odds     INT NOT NULL,
	amount_cents      BIGINT NOT NULL CHECK (amount_cents > 0),
	submission_ref    TEXT NOT NULL,
	status            TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bets_user_week ON bets(user_id, league_id, week);

CREATE TABLE IF NOT EXISTS parlays (
	id             UUID PRIMARY KEY,
	budget_id      UUID NOT NULL REFERENCES weekly_budgets(id),
	user_id        TEXT NOT NULL,
	league_id      TEXT NOT NULL,
	week           INT NOT NULL,
	matchup_id     TEXT NOT NULL,
	combined_odds  NUMERIC(18,8) NOT NULL,
	amount_cents   BIGINT NOT NULL CHECK (amount_cents > 0),
	submission_ref TEXT NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parlays_user_week ON parlays(user_id, league_id, week);

CREATE TABLE IF NOT EXISTS parlay_legs (
	parlay_id         UUID NOT NULL REFERENCES parlays(id),
	leg_number        INT NOT NULL,
	betting_option_id TEXT NOT NULL REFERENCES betting_options(id),
	american_odds     INT NOT NULL,
	PRIMARY KEY (parlay_id, leg_number)
);

CREATE TABLE IF NOT EXISTS submissions (
	user_id        TEXT NOT NULL,
	submission_ref TEXT NOT NULL,
	kind           TEXT NOT NULL,
	result_ids     TEXT[] NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, submission_ref, kind)
);
`

// InitSchema cria as tabelas que ainda não existem
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}
