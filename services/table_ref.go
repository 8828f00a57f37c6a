package services

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	SearchTypeUUID   = "UUID"
	SearchTypeNumber = "table_number"
)

var (
	uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// leadingInt is the integer prefix a table number is read from: an
	// optional sign, then hex after 0x or decimal digits.
	leadingInt = regexp.MustCompile(`^[+-]?(?:0[xX][0-9a-fA-F]*|[0-9]+)`)
)

// TableRef is a parsed table identifier: either a KeyRef or a NumberRef.
type TableRef interface {
	// Raw is the value as the client sent it.
	Raw() string
	SearchType() string
	isTableRef()
}

// KeyRef points at a table by primary key.
type KeyRef struct {
	Value string
	ID    string
}

func (r KeyRef) Raw() string      { return r.Value }
func (KeyRef) SearchType() string { return SearchTypeUUID }
func (KeyRef) isTableRef()        {}

// NumberRef points at a table by its printed number. Valid is false when
// the value has no leading integer; such a ref never matches a row.
type NumberRef struct {
	Value  string
	Number int
	Valid  bool
}

func (r NumberRef) Raw() string      { return r.Value }
func (NumberRef) SearchType() string { return SearchTypeNumber }
func (NumberRef) isTableRef()        {}

// ParseTableRef classifies value once so callers never re-test the format.
func ParseTableRef(value string) (TableRef, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, ErrEmptyIdentifier
	}

	if uuidPattern.MatchString(trimmed) {
		return KeyRef{Value: value, ID: strings.ToLower(trimmed)}, nil
	}

	n, ok := parseLeadingInt(trimmed)
	return NumberRef{Value: value, Number: n, Valid: ok}, nil
}

// parseLeadingInt reads the integer at the start of s and ignores the
// rest, so "12abc" and "7.5" give 12 and 7.
func parseLeadingInt(s string) (int, bool) {
	prefix := leadingInt.FindString(s)
	if prefix == "" {
		return 0, false
	}

	negative := prefix[0] == '-'
	digits := strings.TrimLeft(prefix, "+-")
	base := 10
	if len(digits) > 1 && (digits[1] == 'x' || digits[1] == 'X') {
		digits, base = digits[2:], 16
	}
	if digits == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(digits, base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return int(n), true
}
