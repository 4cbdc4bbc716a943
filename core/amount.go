package core

import (
	"fmt"
	"math/big"
)

// Denomination enumerates the closed set of currencies the ledger
// recognises. No other value is ever accepted by L0/L1.
type Denomination string

const (
	USDTg  Denomination = "USDTg"
	USDTgV Denomination = "USDTgV"
	USDTgG Denomination = "USDTgG"
)

// ValidDenomination reports whether d is one of the recognised
// denominations.
func ValidDenomination(d Denomination) bool {
	switch d {
	case USDTg, USDTgV, USDTgG:
		return true
	default:
		return false
	}
}

// Decimals is the fixed-point precision shared by the USDTg family.
const Decimals = 18

// majorUnitScale is 10^Decimals, the minor-unit value of one major unit.
var majorUnitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// perCallCeilingMajor is the maximum amount, in major units, a single ledger
// call may move (§4.1).
const perCallCeilingMajor = 1_000_000

// Amount is a non-negative fixed-point integer expressed in minor units.
// The zero value represents zero. Arithmetic is saturating-rejecting:
// any operation that would leave the representable range returns an
// error rather than wrapping.
type Amount struct {
	v *big.Int
}

// ZeroAmount returns the additive identity.
func ZeroAmount() Amount { return Amount{v: big.NewInt(0)} }

// AmountFromMajor builds an Amount from a whole number of major units
// (e.g. AmountFromMajor(1) is one USDTg in minor units).
func AmountFromMajor(units uint64) Amount {
	v := new(big.Int).SetUint64(units)
	v.Mul(v, majorUnitScale)
	return Amount{v: v}
}

// AmountFromMinor builds an Amount directly from minor units.
func AmountFromMinor(minor uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(minor)}
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return big.NewInt(0)
	}
	return a.v
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// Sign returns -1, 0, or +1.
func (a Amount) Sign() int { return a.big().Sign() }

// Cmp compares a to b as big.Int.Cmp does.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

// Add returns a+b. Negative operands are never produced by this type, so
// overflow is the only rejection condition; the practical range (minor
// units of a 10^6-major-unit ceiling) never approaches big.Int limits,
// but the check is kept so the contract holds even for pathological
// accumulations across many journal entries.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := new(big.Int).Add(a.big(), b.big())
	if sum.Sign() < 0 {
		return Amount{}, &Error{Kind: ValidationError, Op: "Amount.Add", Msg: "overflow"}
	}
	return Amount{v: sum}, nil
}

// Sub returns a-b, rejecting results that would be negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := new(big.Int).Sub(a.big(), b.big())
	if diff.Sign() < 0 {
		return Amount{}, &Error{Kind: InsufficientFunds, Op: "Amount.Sub", Msg: "would go negative"}
	}
	return Amount{v: diff}, nil
}

// ValidateTransferAmount enforces the §4.1/§4.2 bounds: amount must be
// strictly positive and no greater than the per-call ceiling of 10^6
// major units.
func ValidateTransferAmount(a Amount) error {
	if a.Sign() <= 0 {
		return &Error{Kind: ValidationError, Op: "ValidateTransferAmount", Msg: "amount must be positive"}
	}
	ceiling := AmountFromMajor(perCallCeilingMajor)
	if a.Cmp(ceiling) > 0 {
		return &Error{Kind: ValidationError, Op: "ValidateTransferAmount", Msg: fmt.Sprintf("amount exceeds ceiling of %d major units", perCallCeilingMajor)}
	}
	return nil
}

// String renders the amount in major units: a whole amount prints as an
// integer ("5"), any other amount with all 18 fractional digits, e.g.
// "3.500000000000000000".
func (a Amount) String() string {
	v := a.big()
	whole := new(big.Int)
	frac := new(big.Int)
	whole.QuoRem(v, majorUnitScale, frac)
	if frac.Sign() == 0 {
		return fmt.Sprintf("%s", whole.String())
	}
	return fmt.Sprintf("%s.%018s", whole.String(), frac.String())
}

// Minor returns the minor-unit big.Int backing the amount. Callers must
// not mutate the returned value.
func (a Amount) Minor() *big.Int { return a.big() }

// MarshalJSON encodes the amount as its minor-unit decimal string, so
// precision survives the journal's JSON persistence.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.big().String())), nil
}

// UnmarshalJSON parses the minor-unit decimal string produced by
// MarshalJSON.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("amount: invalid minor-unit value %q", s)
	}
	a.v = v
	return nil
}
