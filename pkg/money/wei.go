// Package money provides the arbitrary-precision amount type used for marketplace prices.
// Amounts are non-negative integers in the smallest unit of the settlement currency (wei)
// and travel as base-10 strings so they survive JSON and key-value storage untouched.
package money

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string is not a non-negative base-10 integer.
var ErrInvalidAmount = errors.New("invalid amount")

// EtherDecimals is the number of wei decimals in one ether.
const EtherDecimals = 18

// Wei is an immutable non-negative integer amount. The zero value is 0.
type Wei struct {
	n *big.Int
}

// Zero returns the zero amount.
func Zero() Wei {
	return Wei{}
}

// FromUint64 builds an amount from a native integer.
func FromUint64(v uint64) Wei {
	return wrap(new(big.Int).SetUint64(v))
}

// Parse converts a canonical decimal string into an amount.
// Only ASCII digits are accepted: no sign, whitespace, fraction or base prefix.
func Parse(s string) (Wei, error) {
	if s == "" {
		return Wei{}, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return Wei{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Wei{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return wrap(n), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Wei {
	w, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return w
}

// wrap keeps zero as the nil representation so equal amounts compare equal structurally.
func wrap(n *big.Int) Wei {
	if n.Sign() == 0 {
		return Wei{}
	}
	return Wei{n: n}
}

func (w Wei) big() *big.Int {
	if w.n == nil {
		return new(big.Int)
	}
	return w.n
}

// Add returns w + other.
func (w Wei) Add(other Wei) Wei {
	return wrap(new(big.Int).Add(w.big(), other.big()))
}

// Cmp compares two amounts and returns -1, 0 or +1.
func (w Wei) Cmp(other Wei) int {
	return w.big().Cmp(other.big())
}

// IsZero reports whether the amount is 0.
func (w Wei) IsZero() bool {
	return w.big().Sign() == 0
}

// DivCount divides the amount by a count, truncating toward zero.
// Callers guard against a zero count; dividing by zero panics.
func (w Wei) DivCount(count uint64) Wei {
	if count == 0 {
		panic("money: division by zero count")
	}
	return wrap(new(big.Int).Quo(w.big(), new(big.Int).SetUint64(count)))
}

// String returns the canonical base-10 representation.
func (w Wei) String() string {
	return w.big().String()
}

// BigInt returns a copy of the underlying integer.
func (w Wei) BigInt() *big.Int {
	return new(big.Int).Set(w.big())
}

// Ether converts the amount to ether for display.
func (w Wei) Ether() decimal.Decimal {
	return decimal.NewFromBigInt(w.big(), -EtherDecimals)
}

// FromEther converts a decimal ether amount to wei, dropping sub-wei digits.
// Negative inputs are rejected.
func FromEther(eth decimal.Decimal) (Wei, error) {
	if eth.IsNegative() {
		return Wei{}, fmt.Errorf("%w: negative ether amount %s", ErrInvalidAmount, eth.String())
	}
	return wrap(eth.Shift(EtherDecimals).Truncate(0).BigInt()), nil
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (w Wei) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted decimal string.
func (w *Wei) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: expected quoted string, got %s", ErrInvalidAmount, string(data))
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
