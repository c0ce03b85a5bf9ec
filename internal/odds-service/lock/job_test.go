package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/odds-service/repo"
	"github.com/radieske/fantasy-betting-league/pkg/contracts/events"
)

type fakeLocker struct {
	games []repo.LockedGame
	err   error
	at    time.Time
}

func (f *fakeLocker) LockStarted(_ context.Context, now time.Time) ([]repo.LockedGame, error) {
	f.at = now
	return f.games, f.err
}

type recorder struct {
	invalidated []string
	broadcasts  []events.Broadcast
	locked      []events.OptionsLocked
}

func (r *recorder) Invalidate(_ context.Context, gameID string) error {
	r.invalidated = append(r.invalidated, gameID)
	return nil
}

func (r *recorder) Publish(_ context.Context, msg events.Broadcast) error {
	r.broadcasts = append(r.broadcasts, msg)
	return nil
}

func (r *recorder) PublishOptionsLocked(_ context.Context, e events.OptionsLocked) error {
	r.locked = append(r.locked, e)
	return errors.New("broker down")
}

func TestJobRun(t *testing.T) {
	now := time.Date(2026, 10, 18, 17, 0, 0, 0, time.UTC)
	locker := &fakeLocker{games: []repo.LockedGame{{GameID: "g1", Options: 12}, {GameID: "g2", Options: 3}}}
	rec := &recorder{}

	j := &Job{Log: zap.NewNop(), Repo: locker, Cache: rec, Broadcaster: rec, Events: rec, Now: func() time.Time { return now }}
	require.NoError(t, j.Run(context.Background()))

	assert.Equal(t, now, locker.at)
	assert.Equal(t, []string{"g1", "g2"}, rec.invalidated)
	require.Len(t, rec.broadcasts, 2)
	assert.Equal(t, "options_locked", rec.broadcasts[0].Type)
	assert.Equal(t, "g1", rec.broadcasts[0].GameID)
	require.Len(t, rec.locked, 2, "publish errors do not stop the run")
	assert.Equal(t, int64(3), rec.locked[1].Options)
}

func TestJobRun_NothingToLock(t *testing.T) {
	rec := &recorder{}
	j := &Job{Log: zap.NewNop(), Repo: &fakeLocker{}, Cache: rec, Broadcaster: rec, Events: rec, Now: time.Now}
	require.NoError(t, j.Run(context.Background()))
	assert.Empty(t, rec.broadcasts)
}

func TestJobRun_RepoError(t *testing.T) {
	rec := &recorder{}
	j := &Job{Log: zap.NewNop(), Repo: &fakeLocker{err: errors.New("db down")}, Cache: rec, Broadcaster: rec, Events: rec, Now: time.Now}
	assert.Error(t, j.Run(context.Background()))
	assert.Empty(t, rec.invalidated)
}

func TestSchedule_RejectsBadSpec(t *testing.T) {
	_, err := Schedule(context.Background(), "not a cron", &Job{})
	assert.Error(t, err)
}
