package topics

const (
	// Odds
	OddsMoved     = "odds_moved"
	OptionsLocked = "options_locked"

	// Apostas
	BetPlaced    = "bet_placed"
	ParlayPlaced = "parlay_placed"
)

// Canal Redis usado pelo odds-service para o fan-out em WebSocket
const OddsBroadcastChannel = "odds_broadcast"
