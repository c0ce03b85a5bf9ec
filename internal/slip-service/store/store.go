// Package store guarda os boletins em andamento.
//
// Toda alteração é um ciclo carregar-alterar-gravar aplicado por Update; duas
// requisições no mesmo boletim nunca se intercalam.
package store

import (
	"context"
	"errors"

	"github.com/radieske/fantasy-betting-league/pkg/betslip"
)

var (
	ErrNotFound = errors.New("slip not found")
	ErrConflict = errors.New("slip is being modified concurrently, try again")
)

type Store interface {
	Get(ctx context.Context, id string) (*betslip.Slip, error)
	// Create grava o boletim se ainda não existir; senão devolve o existente
	Create(ctx context.Context, s *betslip.Slip) (*betslip.Slip, error)
	// Update aplica fn e grava. Se fn devolver erro nada é gravado.
	Update(ctx context.Context, id string, fn func(*betslip.Slip) error) (*betslip.Slip, error)
}
