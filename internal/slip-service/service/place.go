package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/radieske/fantasy-betting-league/internal/shared/metrics"
	"github.com/radieske/fantasy-betting-league/internal/slip-service/budget"
	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

// Outcome é o resultado de um envio. As duas partes são independentes:
// uma pode ser confirmada e a outra falhar.
type Outcome struct {
	Slip      *betslip.Slip
	BetIDs    []string
	ParlayID  string
	BetsErr   error
	ParlayErr error
}

// Err devolve a primeira falha do envio, se houver
func (o Outcome) Err() error {
	if o.BetsErr != nil {
		return o.BetsErr
	}
	return o.ParlayErr
}

// Placed diz se alguma parte foi confirmada
func (o Outcome) Placed() bool {
	return len(o.BetIDs) > 0 || o.ParlayID != ""
}

// Place envia apostas simples e parlay ao budget-service.
// O erro de retorno cobre só o que impede o envio (boletim inexistente, envio em andamento,
// saldo estourado); falhas do backend ficam no Outcome e mantêm a parte no boletim.
func (s *Service) Place(ctx context.Context, slipID string) (Outcome, error) {
	var (
		key       betslip.Key
		refs      betslip.SubmissionRefs
		bets      []betslip.FlatBet
		pb        betslip.ParlayBet
		hasParlay bool
	)
	_, err := s.Store.Update(ctx, slipID, func(sl *betslip.Slip) error {
		if err := sl.BeginPlacement(s.Now()); err != nil {
			return err
		}
		key, refs = sl.Key, sl.Refs
		bets = sl.FlatBets()
		pb, hasParlay, _ = sl.ParlayBet()
		return nil
	})
	if err != nil {
		s.count("place", err)
		return Outcome{}, err
	}

	var (
		out Outcome
		res betslip.PlacementResult
	)
	if len(bets) > 0 {
		placed, err := s.Budget.PlaceBets(ctx, key, refs.Bets, bets)
		if err != nil {
			out.BetsErr = err
			s.logFailure("bets", slipID, err)
		} else {
			out.BetIDs = placed.IDs
			res.BetsPlaced = true
			res.PlacedBets = bets
			res.Remaining = &placed.Remaining
		}
	}
	if hasParlay {
		placed, err := s.Budget.PlaceParlay(ctx, key, refs.Parlay, pb)
		if err != nil {
			out.ParlayErr = err
			s.logFailure("parlay", slipID, err)
		} else {
			if len(placed.IDs) > 0 {
				out.ParlayID = placed.IDs[0]
			}
			res.ParlayPlaced = true
			res.Remaining = &placed.Remaining
		}
	}

	// o marcador precisa sair mesmo que o cliente tenha desistido da requisição
	slip, err := s.Store.Update(context.WithoutCancel(ctx), slipID, func(sl *betslip.Slip) error {
		sl.EndPlacement(res)
		return nil
	})
	if err != nil {
		s.Log.Error("end placement", zap.String("slip_id", slipID), zap.Error(err))
		return out, err
	}
	out.Slip = slip

	switch {
	case out.Err() == nil:
		metrics.SlipMutations.WithLabelValues("place", "ok").Inc()
	case out.Placed():
		metrics.SlipMutations.WithLabelValues("place", "partial").Inc()
	default:
		metrics.SlipMutations.WithLabelValues("place", "error").Inc()
	}
	return out, nil
}

func (s *Service) logFailure(kind, slipID string, err error) {
	var rej *budget.RejectedError
	if errors.As(err, &rej) {
		s.Log.Info("placement rejected", zap.String("kind", kind), zap.String("slip_id", slipID), zap.Int("status", rej.Status), zap.String("reason", rej.Message))
		return
	}
	s.Log.Warn("placement failed", zap.String("kind", kind), zap.String("slip_id", slipID), zap.Error(err))
}
