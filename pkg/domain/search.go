package domain

import (
	"fmt"
	"strings"
)

// SearchType selects which reachable states a search reports.
type SearchType int

const (
	// OneStep reports states reachable in exactly one transition (=>1).
	OneStep SearchType = iota
	// AtLeastOneStep reports states reachable in one or more transitions (=>+).
	AtLeastOneStep
	// AnySteps reports every reachable state, including the initial one (=>*).
	AnySteps
	// NormalForm reports reachable states without successors (=>!).
	NormalForm
)

var searchTypeNames = map[SearchType]string{
	OneStep:        "ONE_STEP",
	AtLeastOneStep: "AT_LEAST_ONE_STEP",
	AnySteps:       "ANY_STEPS",
	NormalForm:     "NORMAL_FORM",
}

var searchTypeArrows = map[SearchType]string{
	OneStep:        "=>1",
	AtLeastOneStep: "=>+",
	AnySteps:       "=>*",
	NormalForm:     "=>!",
}

func (t SearchType) String() string {
	if name, ok := searchTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SearchType(%d)", int(t))
}

// Arrow returns the arrow notation of the search type (e.g. "=>*").
func (t SearchType) Arrow() string {
	return searchTypeArrows[t]
}

// MarshalText encodes the search type by name.
func (t SearchType) MarshalText() ([]byte, error) {
	if _, ok := searchTypeNames[t]; !ok {
		return nil, fmt.Errorf("invalid search type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a search type from its name or arrow notation.
func (t *SearchType) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseSearchType accepts either the name ("ANY_STEPS", case-insensitive) or the arrow ("=>*").
func ParseSearchType(s string) (SearchType, error) {
	clean := strings.TrimSpace(s)
	for t, name := range searchTypeNames {
		if strings.EqualFold(clean, name) || clean == searchTypeArrows[t] {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown search type %q", s)
}

// Unbounded is the depth value meaning "no depth bound".
const Unbounded = -1
