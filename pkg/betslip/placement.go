package betslip

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

// FlatBet é uma aposta simples como o backend espera receber
type FlatBet struct {
	MatchupID       string          `json:"matchup_id"`
	BettingOptionID string          `json:"betting_option_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// ParlayBet é o parlay como o backend espera receber
type ParlayBet struct {
	MatchupID        string          `json:"matchup_id"`
	BettingOptionIDs []string        `json:"betting_option_ids"`
	Amount           decimal.Decimal `json:"amount"`
}

// FlatBets monta o lote de apostas simples; entradas com stake zero ficam de fora
func (s *Slip) FlatBets() []FlatBet {
	out := make([]FlatBet, 0, len(s.Entries))
	for _, e := range s.Entries {
		if !e.Stake.IsPositive() {
			continue
		}
		out = append(out, FlatBet{MatchupID: s.MatchupID, BettingOptionID: e.Option.ID, Amount: e.Stake})
	}
	return out
}

// ParlayBet monta o parlay para envio. ok=false quando não há pernas.
func (s *Slip) ParlayBet() (bet ParlayBet, ok bool, err error) {
	if len(s.Parlay.Legs) == 0 {
		return ParlayBet{}, false, nil
	}
	if _, err := parlay.ValidatePlacement(s.Parlay.Stake, s.legOptions()); err != nil {
		return ParlayBet{}, true, err
	}
	ids := make([]string, len(s.Parlay.Legs))
	for i, l := range s.Parlay.Legs {
		ids[i] = l.Option.ID
	}
	return ParlayBet{MatchupID: s.MatchupID, BettingOptionIDs: ids, Amount: s.Parlay.Stake}, true, nil
}

// BeginPlacement marca o boletim como em envio. Um segundo envio é rejeitado
// até EndPlacement ou até PlacementTimeout expirar.
func (s *Slip) BeginPlacement(now time.Time) error {
	if s.PlacingSince != nil && now.Sub(*s.PlacingSince) < PlacementTimeout {
		return ErrPlacementInFlight
	}
	if s.Headroom().IsNegative() {
		return ErrOverBudget
	}
	if len(s.FlatBets()) == 0 && len(s.Parlay.Legs) == 0 {
		return ErrNothingToPlace
	}
	if _, _, err := s.ParlayBet(); err != nil {
		return err
	}
	s.PlacingSince = &now
	return nil
}

// PlacementResult diz o que o backend confirmou.
// PlacedBets são as apostas simples enviadas no lote confirmado.
type PlacementResult struct {
	BetsPlaced   bool
	PlacedBets   []FlatBet
	ParlayPlaced bool
	Remaining    *decimal.Decimal
}

// EndPlacement libera o boletim. Só o que foi enviado e confirmado é limpo;
// entradas com stake zero e partes que falharam ficam para nova tentativa.
func (s *Slip) EndPlacement(res PlacementResult) {
	s.PlacingSince = nil
	if res.BetsPlaced {
		sent := make(map[string]struct{}, len(res.PlacedBets))
		for _, b := range res.PlacedBets {
			sent[b.BettingOptionID] = struct{}{}
		}
		kept := make([]Entry, 0, len(s.Entries))
		for _, e := range s.Entries {
			if _, ok := sent[e.Option.ID]; !ok {
				kept = append(kept, e)
			}
		}
		s.Entries = kept
		s.Refs.Bets = uuid.NewString()
	}
	if res.ParlayPlaced {
		s.Parlay = Parlay{}
		s.Refs.Parlay = uuid.NewString()
	}
	if res.Remaining != nil {
		s.Remaining = *res.Remaining
	}
}

// ReleaseStale remove um marcador de envio mais velho que PlacementTimeout
// (processo que caiu no meio do envio). Devolve true se removeu.
func (s *Slip) ReleaseStale(now time.Time) bool {
	if s.PlacingSince == nil || now.Sub(*s.PlacingSince) < PlacementTimeout {
		return false
	}
	s.PlacingSince = nil
	return true
}

// idle rejeita alterações enquanto há um envio em andamento
func (s *Slip) idle() error {
	if s.PlacingSince != nil {
		return ErrPlacementInFlight
	}
	return nil
}
