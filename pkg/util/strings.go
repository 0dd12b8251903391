package util

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// SplitSymbol breaks the market:code form into its parts.
func SplitSymbol(s string) (market, code string, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("symbol %q must use the market:code form", s)
	}
	return parts[0], parts[1], nil
}

// JoinSymbol is the inverse of SplitSymbol.
func JoinSymbol(market, code string) string {
	return market + ":" + code
}
