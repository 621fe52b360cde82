// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount converts a decimal string to Money with half-up rounding to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for non-numeric input, signs, zero, or values
// that round to zero cents.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents (half-up)
//	ParseAmount("abc")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// decimal also accepts exponents; amounts typed by people never use them.
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return MoneyFromDecimal(d)
}

// MoneyFromDecimal rounds d half-up to cents and validates it is positive.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() || !cents.LessThan(decimal.NewFromInt(1<<62)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// MustMoney is ParseAmount for constants and tests; it panics on invalid input.
func MustMoney(s string) Money {
	m, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m minus o; the result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount as a float64 for ratio computations.
// Note: Use cents for sums to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number, rounded half-up to cents, or a quoted
// amount in ParseAmount syntax. Numbers may be zero or negative so aggregates
// decode; record amounts are checked by Validate.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ErrInvalidAmount
		}
		parsed, err := ParseAmount(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return ErrInvalidAmount
	}
	cents := d.Mul(hundred).Round(0)
	if cents.Abs().GreaterThanOrEqual(decimal.NewFromInt(1 << 62)) {
		return ErrInvalidAmount
	}
	*m = Money{Cents: cents.IntPart()}
	return nil
}
