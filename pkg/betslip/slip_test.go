package betslip

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

func dollars(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newSlip(remaining int64) *Slip {
	return New(Key{UserID: "u1", LeagueID: "l1", Week: 3}, "m1", dollars(remaining))
}

func option(id, game string, american int, bookmaker string) odds.BettingOption {
	return odds.BettingOption{
		ID:           id,
		GameID:       game,
		MarketType:   odds.MarketMoneyline,
		OutcomeName:  "KC",
		Bookmaker:    bookmaker,
		AmericanOdds: american,
	}
}

var game = Game{GameID: "g1", HomeTeam: "KC", AwayTeam: "BUF", Kickoff: time.Date(2026, 10, 18, 20, 25, 0, 0, time.UTC)}

func TestKeySlipIDIsStable(t *testing.T) {
	k := Key{UserID: "u1", LeagueID: "l1", Week: 3}
	assert.Equal(t, k.SlipID(), k.SlipID())
	assert.NotEqual(t, k.SlipID(), Key{UserID: "u1", LeagueID: "l1", Week: 4}.SlipID())
}

func TestAdd_DefaultStake(t *testing.T) {
	s := newSlip(15)

	n, err := s.Add(option("a", "g1", -110, "fanduel"), game)
	require.NoError(t, err)
	assert.Equal(t, NoticeAdded, n.Kind)
	assert.True(t, s.Entries[0].Stake.Equal(dollars(10)))

	_, err = s.Add(option("b", "g2", 120, "fanduel"), game)
	require.NoError(t, err)
	assert.True(t, s.Entries[1].Stake.Equal(dollars(5)), "only $5 of headroom left")

	_, err = s.Add(option("c", "g3", 200, "fanduel"), game)
	require.NoError(t, err)
	assert.True(t, s.Entries[2].Stake.IsZero())
	assert.True(t, s.Headroom().IsZero())
}

func TestAdd_RejectsLockedAndZeroOdds(t *testing.T) {
	s := newSlip(100)

	locked := option("a", "g1", -110, "fanduel")
	locked.Locked = true
	_, err := s.Add(locked, game)
	assert.ErrorIs(t, err, ErrOptionLocked)

	_, err = s.Add(option("b", "g1", 0, "fanduel"), game)
	assert.ErrorIs(t, err, odds.ErrZeroAmericanOdds)

	assert.Empty(t, s.Entries)
}

func TestAdd_SameOptionBetterOddsReplaces(t *testing.T) {
	s := newSlip(100)

	n, err := s.Add(option("opt", "g1", -110, "fanduel"), game)
	require.NoError(t, err)
	entryID := n.EntryID
	require.NoError(t, s.UpdateStake(entryID, dollars(40)))

	n, err = s.Add(option("opt", "g1", -105, "draftkings"), game)
	require.NoError(t, err)
	assert.Equal(t, NoticeReplaced, n.Kind)
	assert.Contains(t, n.Message, "draftkings")

	require.Len(t, s.Entries, 1)
	assert.Equal(t, entryID, s.Entries[0].ID, "entry keeps its id")
	assert.Equal(t, -105, s.Entries[0].Option.AmericanOdds)
	assert.True(t, s.Entries[0].Stake.Equal(dollars(40)), "stake is preserved")
}

func TestAdd_SameOptionEqualOrWorseIsRejected(t *testing.T) {
	s := newSlip(100)
	_, err := s.Add(option("opt", "g1", -105, "draftkings"), game)
	require.NoError(t, err)
	before := s.Entries[0]

	for _, american := range []int{-105, -110, -200} {
		n, err := s.Add(option("opt", "g1", american, "caesars"), game)
		require.NoError(t, err)
		assert.Equal(t, NoticeRejected, n.Kind, "american %d", american)
		assert.NotEmpty(t, n.Message)
		require.Len(t, s.Entries, 1)
		assert.Equal(t, before, s.Entries[0])
	}
}

func TestAdd_ReplacementStakeIsClampedToBudget(t *testing.T) {
	s := newSlip(100)
	n1, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	n2, _ := s.Add(option("b", "g2", -110, "fanduel"), game)
	require.NoError(t, s.UpdateStake(n1.EntryID, dollars(40)))
	require.NoError(t, s.UpdateStake(n2.EntryID, dollars(50)))

	// saldo caiu no backend: 60 restantes para 90 comprometidos
	s.Remaining = dollars(60)

	n, err := s.Add(option("a", "g1", 110, "caesars"), game)
	require.NoError(t, err)
	assert.Equal(t, NoticeReplaced, n.Kind)
	assert.True(t, s.Entries[0].Stake.Equal(dollars(10)), "got %s", s.Entries[0].Stake)
}

func TestUpdateStake_Headroom(t *testing.T) {
	s := newSlip(100)
	n1, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	n2, _ := s.Add(option("b", "g2", -110, "fanduel"), game)
	require.NoError(t, s.UpdateStake(n1.EntryID, dollars(30)))
	require.NoError(t, s.UpdateStake(n2.EntryID, dollars(40)))

	assert.ErrorIs(t, s.UpdateStake(n1.EntryID, dollars(61)), ErrStakeExceedsBudget)
	assert.True(t, s.Entries[0].Stake.Equal(dollars(30)), "rejected update is a no-op")

	assert.NoError(t, s.UpdateStake(n1.EntryID, dollars(60)))
	assert.True(t, s.Headroom().IsZero())

	assert.ErrorIs(t, s.UpdateStake(n1.EntryID, dollars(-1)), parlay.ErrNegativeStake)
	assert.ErrorIs(t, s.UpdateStake("missing", dollars(1)), ErrEntryNotFound)
}

func TestRemove_UsesStableIDs(t *testing.T) {
	s := newSlip(100)
	n1, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	n2, _ := s.Add(option("b", "g2", -110, "fanduel"), game)
	n3, _ := s.Add(option("c", "g3", -110, "fanduel"), game)

	require.NoError(t, s.Remove(n1.EntryID))
	// ids continuam válidos depois de uma remoção anterior
	require.NoError(t, s.UpdateStake(n3.EntryID, dollars(25)))
	assert.Equal(t, n2.EntryID, s.Entries[0].ID)
	assert.True(t, s.Entries[1].Stake.Equal(dollars(25)))

	assert.ErrorIs(t, s.Remove(n1.EntryID), ErrEntryNotFound)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Entries)
	assert.True(t, s.Committed().IsZero())
}

func TestAddLeg(t *testing.T) {
	s := newSlip(100)
	require.NoError(t, s.AddLeg(option("a", "g1", 150, "fanduel"), game))

	// mesmo jogo/mercado/resultado
	err := s.AddLeg(option("z", "g1", 170, "draftkings"), game)
	assert.ErrorIs(t, err, parlay.ErrDuplicateLeg)
	require.Len(t, s.Parlay.Legs, 1)
	assert.Equal(t, "a", s.Parlay.Legs[0].Option.ID)

	locked := option("b", "g2", -110, "fanduel")
	locked.Locked = true
	assert.ErrorIs(t, s.AddLeg(locked, game), parlay.ErrLockedLeg)

	for i := 2; i <= parlay.MaxLegs; i++ {
		require.NoError(t, s.AddLeg(option(string(rune('a'+i)), "g"+string(rune('a'+i)), -110, "fanduel"), game))
	}
	assert.ErrorIs(t, s.AddLeg(option("x", "gx", -110, "fanduel"), game), parlay.ErrTooManyLegs)
	assert.Len(t, s.Parlay.Legs, parlay.MaxLegs)
}

func TestParlayCalculation_RecomputedOnEveryChange(t *testing.T) {
	s := newSlip(100)
	require.NoError(t, s.AddLeg(option("a", "g1", 150, "fanduel"), game))
	require.NoError(t, s.SetParlayStake(dollars(10)))

	calc, err := s.ParlayCalculation()
	require.NoError(t, err)
	assert.Equal(t, "25.00", calc.Return.StringFixed(2))
	assert.False(t, s.CanPlaceParlay())

	require.NoError(t, s.AddLeg(option("b", "g2", -110, "fanduel"), game))
	calc, err = s.ParlayCalculation()
	require.NoError(t, err)
	assert.Equal(t, "47.73", calc.Return.StringFixed(2))
	assert.True(t, s.CanPlaceParlay())

	require.NoError(t, s.RemoveLeg("a"))
	assert.ErrorIs(t, s.RemoveLeg("a"), ErrLegNotFound)
	calc, err = s.ParlayCalculation()
	require.NoError(t, err)
	assert.Equal(t, "19.09", calc.Return.StringFixed(2))
}

func TestSetParlayStake_SharesBudgetWithEntries(t *testing.T) {
	s := newSlip(100)
	n, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	require.NoError(t, s.UpdateStake(n.EntryID, dollars(70)))

	assert.ErrorIs(t, s.SetParlayStake(dollars(31)), ErrStakeExceedsBudget)
	assert.NoError(t, s.SetParlayStake(dollars(30)))
	assert.ErrorIs(t, s.UpdateStake(n.EntryID, dollars(71)), ErrStakeExceedsBudget)
	assert.True(t, s.Committed().Equal(dollars(100)))
}

func TestPlacement(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := newSlip(100)

	assert.ErrorIs(t, s.BeginPlacement(now), ErrNothingToPlace)

	n, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	require.NoError(t, s.AddLeg(option("b", "g2", 150, "fanduel"), game))
	require.NoError(t, s.SetParlayStake(dollars(5)))

	// parlay com uma perna não pode ser enviado
	assert.ErrorIs(t, s.BeginPlacement(now), parlay.ErrTooFewLegs)
	require.NoError(t, s.AddLeg(option("c", "g3", -110, "fanduel"), game))

	require.NoError(t, s.BeginPlacement(now))
	assert.ErrorIs(t, s.BeginPlacement(now.Add(time.Second)), ErrPlacementInFlight)

	bets := s.FlatBets()
	require.Len(t, bets, 1)
	assert.Equal(t, "m1", bets[0].MatchupID)
	assert.Equal(t, "a", bets[0].BettingOptionID)

	pb, ok, err := s.ParlayBet()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, pb.BettingOptionIDs)

	// falha de rede: nada é limpo
	refs := s.Refs
	s.EndPlacement(PlacementResult{})
	assert.Nil(t, s.PlacingSince)
	assert.Len(t, s.Entries, 1)
	assert.Equal(t, n.EntryID, s.Entries[0].ID)
	assert.Equal(t, refs, s.Refs, "refs are kept for the retry")

	// apostas simples confirmadas, parlay não
	require.NoError(t, s.BeginPlacement(now.Add(2*time.Second)))
	remaining := dollars(90)
	s.EndPlacement(PlacementResult{BetsPlaced: true, PlacedBets: bets, Remaining: &remaining})
	assert.Empty(t, s.Entries)
	assert.Len(t, s.Parlay.Legs, 2)
	assert.NotEqual(t, refs.Bets, s.Refs.Bets)
	assert.Equal(t, refs.Parlay, s.Refs.Parlay)
	assert.True(t, s.Remaining.Equal(dollars(90)))
}

func TestPlacement_FrozenWhileInFlight(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := newSlip(100)
	n, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	require.NoError(t, s.AddLeg(option("b", "g2", 150, "fanduel"), game))
	require.NoError(t, s.AddLeg(option("c", "g3", -110, "fanduel"), game))
	require.NoError(t, s.SetParlayStake(dollars(5)))
	require.NoError(t, s.BeginPlacement(now))

	_, err := s.Add(option("d", "g4", 120, "fanduel"), game)
	assert.ErrorIs(t, err, ErrPlacementInFlight)
	assert.ErrorIs(t, s.Remove(n.EntryID), ErrPlacementInFlight)
	assert.ErrorIs(t, s.UpdateStake(n.EntryID, dollars(20)), ErrPlacementInFlight)
	assert.ErrorIs(t, s.Clear(), ErrPlacementInFlight)
	assert.ErrorIs(t, s.AddLeg(option("d", "g4", 120, "fanduel"), game), ErrPlacementInFlight)
	assert.ErrorIs(t, s.RemoveLeg("b"), ErrPlacementInFlight)
	assert.ErrorIs(t, s.SetParlayStake(dollars(1)), ErrPlacementInFlight)
	assert.ErrorIs(t, s.ClearParlay(), ErrPlacementInFlight)

	require.Len(t, s.Entries, 1)
	assert.True(t, s.Entries[0].Stake.Equal(DefaultStake))
	assert.Len(t, s.Parlay.Legs, 2)
	assert.True(t, s.Parlay.Stake.Equal(dollars(5)))

	// marcador expirado: ReleaseStale destrava o boletim
	assert.False(t, s.ReleaseStale(now.Add(PlacementTimeout-time.Second)))
	assert.True(t, s.ReleaseStale(now.Add(PlacementTimeout)))
	assert.Nil(t, s.PlacingSince)
	assert.NoError(t, s.UpdateStake(n.EntryID, dollars(20)))
}

func TestEndPlacement_KeepsEntriesThatWereNotSent(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := newSlip(100)
	sent, _ := s.Add(option("a", "g1", -110, "fanduel"), game)
	idle, _ := s.Add(option("b", "g2", 150, "fanduel"), game)
	require.NoError(t, s.UpdateStake(idle.EntryID, decimal.Zero))

	require.NoError(t, s.BeginPlacement(now))
	bets := s.FlatBets()
	require.Len(t, bets, 1)
	assert.Equal(t, "a", bets[0].BettingOptionID)

	remaining := dollars(90)
	s.EndPlacement(PlacementResult{BetsPlaced: true, PlacedBets: bets, Remaining: &remaining})

	require.Len(t, s.Entries, 1)
	assert.Equal(t, idle.EntryID, s.Entries[0].ID)
	assert.NotEqual(t, sent.EntryID, s.Entries[0].ID)
	assert.True(t, s.Entries[0].Stake.IsZero())
	assert.True(t, s.Remaining.Equal(dollars(90)))
}

func TestBeginPlacement_StaleMarkerIsIgnored(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := newSlip(100)
	_, _ = s.Add(option("a", "g1", -110, "fanduel"), game)

	require.NoError(t, s.BeginPlacement(now))
	assert.NoError(t, s.BeginPlacement(now.Add(PlacementTimeout)))
}

func TestBeginPlacement_OverBudget(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	s := newSlip(100)
	_, _ = s.Add(option("a", "g1", -110, "fanduel"), game)
	s.Remaining = dollars(5)

	assert.ErrorIs(t, s.BeginPlacement(now), ErrOverBudget)
}
