package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidPositions is returned for malformed specific-position input
var ErrInvalidPositions = errors.New("specificPositions must be distinct positive integers")

// PositionSet is the validated set of participant positions an organizer
// wants to award. The zero value is empty and selects the random strategy.
type PositionSet []int

// NewPositionSet validates positions and returns them sorted ascending.
func NewPositionSet(positions []int) (PositionSet, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	set := make(PositionSet, len(positions))
	copy(set, positions)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	sort.Ints(set)
	return set, nil
}

// ParsePositionSet parses the comma separated form, e.g. "3, 7, 12".
// Blank input yields an empty set.
func ParsePositionSet(raw string) (PositionSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	positions := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidPositions, part)
		}
		positions = append(positions, n)
	}
	return NewPositionSet(positions)
}

// Validate checks that every position is positive and unique
func (s PositionSet) Validate() error {
	seen := make(map[int]struct{}, len(s))
	for _, p := range s {
		if p <= 0 {
			return fmt.Errorf("%w: %d is not positive", ErrInvalidPositions, p)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: %d is repeated", ErrInvalidPositions, p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Len returns the number of requested positions
func (s PositionSet) Len() int {
	return len(s)
}

// String renders the set in the comma separated form accepted by ParsePositionSet
func (s PositionSet) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}
