// Package urlstate maps calculator form state to and from URL query
// parameters.
//
// Each form exposes a list of Fields binding a store key to a query parameter
// name. Sync decodes the parameters that are present, Commit writes every
// managed parameter back, and Clear drops the managed parameters while leaving
// unrelated ones untouched.
package urlstate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidParam is returned when a query parameter cannot be decoded.
var ErrInvalidParam = errors.New("invalid query parameter")

// ParseNumber decodes a finite float, returning fallback and false when raw is
// empty or not a number.
func ParseNumber(raw string, fallback float64) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback, false
	}
	return v, true
}

// ParseInt decodes a base-10 integer, returning fallback and false on failure.
func ParseInt(raw string, fallback int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback, false
	}
	return v, true
}

// ParseBoolean accepts true/false, 1/0, yes/no and on/off.
func ParseBoolean(raw string, fallback bool) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return fallback, false
	}
}

// ParseEnum returns raw when it is one of allowed.
func ParseEnum(raw string, allowed []string, fallback string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, a := range allowed {
		if raw == a {
			return raw, true
		}
	}
	return fallback, false
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func invalid(param, raw string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidParam, param, raw)
}
