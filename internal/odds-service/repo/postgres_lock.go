package repo

import (
	"context"
	"time"
)

// LockedGame conta quantas opções de um jogo foram travadas numa rodada do job
type LockedGame struct {
	GameID  string
	Options int64
}

// LockStarted seta o flag de trava em todas as opções de jogos cujo kickoff já passou.
// Só devolve jogos com opções recém-travadas.
func (r *ReadRepo) LockStarted(ctx context.Context, now time.Time) ([]LockedGame, error) {
	const q = `
		UPDATE betting_options o
		SET is_locked = TRUE, updated_at = $1
		FROM games g
		WHERE g.id = o.game_id AND g.kickoff <= $1 AND o.is_locked = FALSE
		RETURNING o.game_id;
	`
	rows, err := r.DB.QueryContext(ctx, q, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LockedGame
	idx := map[string]int{}
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, err
		}
		i, ok := idx[gameID]
		if !ok {
			i = len(out)
			idx[gameID] = i
			out = append(out, LockedGame{GameID: gameID})
		}
		out[i].Options++
	}
	return out, rows.Err()
}
