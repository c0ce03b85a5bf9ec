package odds

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrNoQuotes = errors.New("no valid quotes")

// Best retorna a cotação mais vantajosa para o apostador.
// O decimal é recalculado a partir da odd americana; o campo DecimalOdds recebido é ignorado.
// Empate: vence a primeira cotação na ordem de entrada. Cotações com odd 0 são descartadas.
// Devolve ErrNoQuotes quando quotes está vazio ou quando todas as cotações têm odd 0.
func Best(quotes []Quote) (Quote, error) {
	i, err := bestIndex(quotes, func(q Quote) int { return q.AmericanOdds })
	if err != nil {
		return Quote{}, err
	}
	return quotes[i], nil
}

// BestOption aplica a mesma regra de Best sobre opções de aposta, inclusive ErrNoQuotes
func BestOption(options []BettingOption) (BettingOption, error) {
	i, err := bestIndex(options, func(o BettingOption) int { return o.AmericanOdds })
	if err != nil {
		return BettingOption{}, err
	}
	return options[i], nil
}

// IsBetter indica se candidate paga estritamente mais que current
func IsBetter(candidate, current int) bool {
	c, err := Decimal(candidate)
	if err != nil {
		return false
	}
	cur, err := Decimal(current)
	if err != nil {
		return true
	}
	return c.GreaterThan(cur)
}

// BestByOutcome agrupa opções por (jogo, mercado, resultado, linha) e devolve
// a melhor de cada grupo, na ordem em que cada grupo apareceu pela primeira vez
func BestByOutcome(options []BettingOption) []BettingOption {
	var order []lineKey
	groups := make(map[lineKey][]BettingOption)
	for _, o := range options {
		k := lineKeyOf(o)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], o)
	}

	out := make([]BettingOption, 0, len(order))
	for _, k := range order {
		best, err := BestOption(groups[k])
		if err != nil {
			continue
		}
		out = append(out, best)
	}
	return out
}

func bestIndex[T any](items []T, american func(T) int) (int, error) {
	best := -1
	var bestDec decimal.Decimal
	for i, it := range items {
		d, err := Decimal(american(it))
		if err != nil {
			continue
		}
		// estritamente maior: em empate mantém o primeiro
		if best < 0 || d.GreaterThan(bestDec) {
			best, bestDec = i, d
		}
	}
	if best < 0 {
		return 0, ErrNoQuotes
	}
	return best, nil
}
