package odds

import (
	"errors"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	ErrZeroAmericanOdds   = errors.New("invalid american odds: cannot be 0")
	ErrInvalidDecimalOdds = errors.New("invalid decimal odds: must be > 1")
)

var hundred = decimal.NewFromInt(100)

// Decimal converte odds americanas em odds decimais exatas
// +150 -> 2.5 | -110 -> 1.9090909090909091
func Decimal(american int) (decimal.Decimal, error) {
	if american == 0 {
		return decimal.Zero, ErrZeroAmericanOdds
	}
	a := decimal.NewFromInt(int64(american))
	if american > 0 {
		return a.Div(hundred).Add(decimal.NewFromInt(1)), nil
	}
	return hundred.Div(a.Neg()).Add(decimal.NewFromInt(1)), nil
}

// AmericanToDecimal converte odds americanas em decimais (float)
// Positivas: a/100 + 1 | Negativas: 100/|a| + 1
func AmericanToDecimal(american int) (float64, error) {
	d, err := Decimal(american)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// DecimalToAmerican converte odds decimais em americanas
// 2.50 -> +150 | 1.91 -> -110
func DecimalToAmerican(dec float64) (int, error) {
	if dec <= 1.0 || math.IsNaN(dec) || math.IsInf(dec, 0) {
		return 0, ErrInvalidDecimalOdds
	}
	if dec >= 2.0 {
		return int(math.Round((dec - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (dec - 1.0))), nil
}

// ImpliedProbability retorna a probabilidade implícita de uma odd americana
func ImpliedProbability(american int) (float64, error) {
	dec, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1.0 / dec, nil
}

// FormatAmerican formata a odd com sinal explícito (+150, -110)
func FormatAmerican(american int) string {
	if american > 0 {
		return "+" + strconv.Itoa(american)
	}
	return strconv.Itoa(american)
}
