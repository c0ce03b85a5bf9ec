package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

func newSlip() *betslip.Slip {
	return betslip.New(betslip.Key{UserID: "u1", LeagueID: "l1", Week: 7}, "m1", decimal.NewFromInt(100))
}

func TestMemory_CreateIsIdempotent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first, err := m.Create(ctx, newSlip())
	require.NoError(t, err)

	again := newSlip()
	again.Remaining = decimal.NewFromInt(5)
	got, err := m.Create(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(100)), "existing slip wins")
	assert.Equal(t, first.Refs, got.Refs)
}

func TestMemory_UpdateErrorIsNotSaved(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	s, err := m.Create(ctx, newSlip())
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = m.Update(ctx, s.ID, func(s *betslip.Slip) error {
		s.Remaining = decimal.Zero
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(100)))

	_, err = m.Update(ctx, "missing", func(*betslip.Slip) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ReturnedSlipsAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	s, err := m.Create(ctx, newSlip())
	require.NoError(t, err)

	s.Remaining = decimal.Zero
	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(100)))
}

func TestMemory_ConcurrentUpdatesAreSerialised(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	s, err := m.Create(ctx, newSlip())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, s.ID, func(s *betslip.Slip) error {
				s.Remaining = s.Remaining.Add(decimal.NewFromInt(1))
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Remaining.Equal(decimal.NewFromInt(150)))
}
