// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing prices and quantities typed into
// forms or read back from spreadsheet cells.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user supplied price to a decimal.
//
// It accepts both dot (12.5) and comma (12,5) decimal separators and rejects
// signs, grouping separators and anything with more than one separator.
// Zero is allowed; the catalog has free samples.
//
// Examples:
//
//	ParseAmount("5000")  -> 5000, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("1.000.000") -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseQty parses a quantity field. An empty field means one item.
func ParseQty(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrInvalidQty
	}
	return n, nil
}

// ParseCellAmount reads a numeric spreadsheet cell. Cells rendered with a
// currency prefix or thousands grouping ("Rp 15.000", "15,000") are accepted
// on a best effort basis; unreadable cells count as zero.
func ParseCellAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '-' {
			return r
		}
		return -1
	}, s)
	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return d
}
