package betslip

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/radieske/fantasy-betting-league/pkg/odds"
	"github.com/radieske/fantasy-betting-league/pkg/parlay"
)

type NoticeKind string

const (
	NoticeAdded    NoticeKind = "added"
	NoticeReplaced NoticeKind = "replaced"
	NoticeRejected NoticeKind = "rejected"
)

// Notice é a mensagem informativa devolvida ao usuário após Add
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	EntryID string     `json:"entry_id,omitempty"`
	Message string     `json:"message"`
}

// Add coloca a opção no boletim.
// Se já existe entrada para o mesmo id, ela só é substituída por odds estritamente melhores;
// o stake anterior é mantido, limitado ao saldo disponível.
func (s *Slip) Add(option odds.BettingOption, game Game) (Notice, error) {
	if err := s.idle(); err != nil {
		return Notice{}, err
	}
	if err := option.Validate(); err != nil {
		return Notice{}, err
	}
	if option.Locked {
		return Notice{}, ErrOptionLocked
	}

	if i := s.optionIndex(option.ID); i >= 0 {
		cur := s.Entries[i]
		if !odds.IsBetter(option.AmericanOdds, cur.Option.AmericanOdds) {
			return Notice{
				Kind:    NoticeRejected,
				EntryID: cur.ID,
				Message: fmt.Sprintf("%s %s at %s is not better than %s on your slip",
					option.Bookmaker, option.OutcomeName, odds.FormatAmerican(option.AmericanOdds),
					odds.FormatAmerican(cur.Option.AmericanOdds)),
			}, nil
		}

		limit := nonNegative(s.Headroom().Add(cur.Stake))
		s.Entries[i] = Entry{
			ID:     cur.ID,
			Option: option,
			Game:   game,
			Stake:  decimal.Min(cur.Stake, limit),
		}
		return Notice{
			Kind:    NoticeReplaced,
			EntryID: cur.ID,
			Message: fmt.Sprintf("better odds: %s %s replaces %s %s",
				option.Bookmaker, odds.FormatAmerican(option.AmericanOdds),
				cur.Option.Bookmaker, odds.FormatAmerican(cur.Option.AmericanOdds)),
		}, nil
	}

	e := Entry{
		ID:     newEntryID(),
		Option: option,
		Game:   game,
		Stake:  decimal.Min(nonNegative(s.Headroom()), DefaultStake),
	}
	s.Entries = append(s.Entries, e)
	return Notice{
		Kind:    NoticeAdded,
		EntryID: e.ID,
		Message: fmt.Sprintf("%s %s added", option.OutcomeName, odds.FormatAmerican(option.AmericanOdds)),
	}, nil
}

// Remove apaga a entrada pelo id estável
func (s *Slip) Remove(entryID string) error {
	if err := s.idle(); err != nil {
		return err
	}
	i := s.entryIndex(entryID)
	if i < 0 {
		return ErrEntryNotFound
	}
	s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
	return nil
}

// UpdateStake altera o stake de uma entrada. Rejeição não altera nada.
func (s *Slip) UpdateStake(entryID string, amount decimal.Decimal) error {
	if err := s.idle(); err != nil {
		return err
	}
	i := s.entryIndex(entryID)
	if i < 0 {
		return ErrEntryNotFound
	}
	if amount.IsNegative() {
		return parlay.ErrNegativeStake
	}
	if amount.GreaterThan(s.Headroom().Add(s.Entries[i].Stake)) {
		return ErrStakeExceedsBudget
	}
	s.Entries[i].Stake = amount
	return nil
}

// Clear esvazia apostas simples e parlay
func (s *Slip) Clear() error {
	if err := s.idle(); err != nil {
		return err
	}
	s.Entries = []Entry{}
	s.Parlay = Parlay{}
	return nil
}

// AddLeg adiciona uma perna ao parlay; qualquer rejeição deixa o parlay intacto
func (s *Slip) AddLeg(option odds.BettingOption, game Game) error {
	if err := s.idle(); err != nil {
		return err
	}
	if err := option.Validate(); err != nil {
		return err
	}
	if option.Locked {
		return parlay.ErrLockedLeg
	}
	if len(s.Parlay.Legs) >= parlay.MaxLegs {
		return parlay.ErrTooManyLegs
	}
	if err := parlay.CheckDuplicate(s.legOptions(), option); err != nil {
		return err
	}
	s.Parlay.Legs = append(s.Parlay.Legs, Leg{Option: option, Game: game})
	return nil
}

// RemoveLeg remove a perna pelo id da opção
func (s *Slip) RemoveLeg(optionID string) error {
	if err := s.idle(); err != nil {
		return err
	}
	for i, l := range s.Parlay.Legs {
		if l.Option.ID == optionID {
			s.Parlay.Legs = append(s.Parlay.Legs[:i], s.Parlay.Legs[i+1:]...)
			return nil
		}
	}
	return ErrLegNotFound
}

// SetParlayStake segue a mesma regra de UpdateStake
func (s *Slip) SetParlayStake(amount decimal.Decimal) error {
	if err := s.idle(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return parlay.ErrNegativeStake
	}
	if amount.GreaterThan(s.Headroom().Add(s.Parlay.Stake)) {
		return ErrStakeExceedsBudget
	}
	s.Parlay.Stake = amount
	return nil
}

func (s *Slip) ClearParlay() error {
	if err := s.idle(); err != nil {
		return err
	}
	s.Parlay = Parlay{}
	return nil
}

// ParlayCalculation recalcula o parlay a partir das pernas e do stake atuais
func (s *Slip) ParlayCalculation() (parlay.Calculation, error) {
	return parlay.Calculate(s.Parlay.Stake, s.legOptions())
}

func (s *Slip) CanPlaceParlay() bool {
	return parlay.CanPlace(len(s.Parlay.Legs))
}

func (s *Slip) legOptions() []odds.BettingOption {
	out := make([]odds.BettingOption, len(s.Parlay.Legs))
	for i, l := range s.Parlay.Legs {
		out[i] = l.Option
	}
	return out
}
