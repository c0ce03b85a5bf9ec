// Package service aplica as operações do boletim: busca a cotação no odds-service,
// altera o boletim dentro de uma transação do store e envia ao budget-service.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/budget"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/store"
	"github.com/radieske/fantasy-betting-league/pkg/betslip"
	"github.com/radieske/fantasy-betting-league/pkg/odds"
)

var ErrStakePrecision = errors.New("stake must have at most 2 decimal places")

// Odds resolve uma opção de aposta pelo id
type Odds interface {
	Option(ctx context.Context, optionID string) (odds.BettingOption, betslip.Game, error)
}

// Budget é o backend que guarda o saldo semanal e grava as apostas
type Budget interface {
	Remaining(ctx context.Context, key betslip.Key) (decimal.Decimal, error)
	PlaceBets(ctx context.Context, key betslip.Key, ref string, bets []betslip.FlatBet) (budget.Placed, error)
	PlaceParlay(ctx context.Context, key betslip.Key, ref string, p betslip.ParlayBet) (budget.Placed, error)
}

type Service struct {
	Log    *zap.Logger
	Store  store.Store
	Odds   Odds
	Budget Budget
	Now    func() time.Time
}

func New(log *zap.Logger, st store.Store, o Odds, b Budget) *Service {
	return &Service{Log: log, Store: st, Odds: o, Budget: b, Now: time.Now}
}

// Open cria o boletim da chave ou carrega o existente, sempre com o saldo atual do backend
func (s *Service) Open(ctx context.Context, key betslip.Key, matchupID string) (*betslip.Slip, error) {
	remaining, err := s.Budget.Remaining(ctx, key)
	if err != nil {
		return nil, err
	}
	slip, err := s.Store.Create(ctx, betslip.New(key, matchupID, remaining))
	if err != nil {
		return nil, err
	}
	if slip.Remaining.Equal(remaining) && slip.MatchupID == matchupID {
		return slip, nil
	}
	return s.Store.Update(ctx, slip.ID, func(sl *betslip.Slip) error {
		if sl.PlacingSince == nil {
			sl.Remaining = remaining
		}
		sl.MatchupID = matchupID
		return nil
	})
}

func (s *Service) Get(ctx context.Context, slipID string) (*betslip.Slip, error) {
	return s.Store.Get(ctx, slipID)
}

// AddEntry busca a cotação atual e coloca no boletim. Uma odd pior volta como aviso, não como erro.
func (s *Service) AddEntry(ctx context.Context, slipID, optionID string) (*betslip.Slip, betslip.Notice, error) {
	opt, game, err := s.Odds.Option(ctx, optionID)
	if err != nil {
		metrics.SlipMutations.WithLabelValues("add", "error").Inc()
		return nil, betslip.Notice{}, err
	}

	var notice betslip.Notice
	slip, err := s.Store.Update(ctx, slipID, func(sl *betslip.Slip) error {
		sl.ReleaseStale(s.Now())
		n, err := sl.Add(opt, game)
		notice = n
		return err
	})
	switch {
	case err != nil:
		s.count("add", err)
	case notice.Kind == betslip.NoticeRejected:
		metrics.SlipMutations.WithLabelValues("add", "rejected").Inc()
	default:
		metrics.SlipMutations.WithLabelValues("add", "ok").Inc()
	}
	return slip, notice, err
}

func (s *Service) RemoveEntry(ctx context.Context, slipID, entryID string) (*betslip.Slip, error) {
	return s.mutate(ctx, "remove", slipID, func(sl *betslip.Slip) error { return sl.Remove(entryID) })
}

func (s *Service) UpdateStake(ctx context.Context, slipID, entryID string, amount decimal.Decimal) (*betslip.Slip, error) {
	if err := checkPrecision(amount); err != nil {
		metrics.SlipMutations.WithLabelValues("stake", "rejected").Inc()
		return nil, err
	}
	return s.mutate(ctx, "stake", slipID, func(sl *betslip.Slip) error { return sl.UpdateStake(entryID, amount) })
}

func (s *Service) Clear(ctx context.Context, slipID string) (*betslip.Slip, error) {
	return s.mutate(ctx, "clear", slipID, func(sl *betslip.Slip) error { return sl.Clear() })
}

func (s *Service) AddLeg(ctx context.Context, slipID, optionID string) (*betslip.Slip, error) {
	opt, game, err := s.Odds.Option(ctx, optionID)
	if err != nil {
		metrics.SlipMutations.WithLabelValues("leg_add", "error").Inc()
		return nil, err
	}
	return s.mutate(ctx, "leg_add", slipID, func(sl *betslip.Slip) error { return sl.AddLeg(opt, game) })
}

func (s *Service) RemoveLeg(ctx context.Context, slipID, optionID string) (*betslip.Slip, error) {
	return s.mutate(ctx, "leg_remove", slipID, func(sl *betslip.Slip) error { return sl.RemoveLeg(optionID) })
}

func (s *Service) SetParlayStake(ctx context.Context, slipID string, amount decimal.Decimal) (*betslip.Slip, error) {
	if err := checkPrecision(amount); err != nil {
		metrics.SlipMutations.WithLabelValues("parlay_stake", "rejected").Inc()
		return nil, err
	}
	return s.mutate(ctx, "parlay_stake", slipID, func(sl *betslip.Slip) error { return sl.SetParlayStake(amount) })
}

func (s *Service) ClearParlay(ctx context.Context, slipID string) (*betslip.Slip, error) {
	return s.mutate(ctx, "parlay_clear", slipID, func(sl *betslip.Slip) error { return sl.ClearParlay() })
}

// mutate aplica fn no boletim. Alterações durante um envio são rejeitadas
// com betslip.ErrPlacementInFlight, exceto quando o marcador já expirou.
func (s *Service) mutate(ctx context.Context, op, slipID string, fn func(*betslip.Slip) error) (*betslip.Slip, error) {
	slip, err := s.Store.Update(ctx, slipID, func(sl *betslip.Slip) error {
		sl.ReleaseStale(s.Now())
		return fn(sl)
	})
	s.count(op, err)
	return slip, err
}

func (s *Service) count(op string, err error) {
	switch {
	case err == nil:
		metrics.SlipMutations.WithLabelValues(op, "ok").Inc()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrConflict):
		metrics.SlipMutations.WithLabelValues(op, "error").Inc()
	default:
		metrics.SlipMutations.WithLabelValues(op, "rejected").Inc()
	}
}

func checkPrecision(d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return ErrStakePrecision
	}
	return nil
}
