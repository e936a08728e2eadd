package domain

import (
	"errors"
	"fmt"
	"slices"
)

// FilterSet selects which cities and hours contribute to the matrix. Order
// matters: it fixes the row and column order of the resulting Matrix.
type FilterSet struct {
	Cities []string `json:"cities"`
	Hours  []int    `json:"hours"`
}

// DefaultFilterSet returns the eight analysed highway authorities and the
// peak hours 7-9 and 17-19.
func DefaultFilterSet() FilterSet {
	return FilterSet{
		Cities: []string{
			"Wandsworth", "Enfield", "Croydon", "Redcar and Cleveland",
			"Lambeth", "Hartlepool", "Hackney", "Newham",
		},
		Hours: []int{7, 8, 9, 17, 18, 19},
	}
}

// Validate rejects empty or duplicated entries. A duplicate would produce two
// matrix cells for the same key.
func (f FilterSet) Validate() error {
	if len(f.Cities) == 0 {
		return errors.New("no target cities")
	}
	if len(f.Hours) == 0 {
		return errors.New("no peak hours")
	}
	seenCity := make(map[string]struct{}, len(f.Cities))
	for _, c := range f.Cities {
		if _, ok := seenCity[c]; ok {
			return fmt.Errorf("duplicate city %q", c)
		}
		seenCity[c] = struct{}{}
	}
	seenHour := make(map[int]struct{}, len(f.Hours))
	for _, h := range f.Hours {
		if _, ok := seenHour[h]; ok {
			return fmt.Errorf("duplicate hour %d", h)
		}
		seenHour[h] = struct{}{}
	}
	return nil
}

// Matches reports whether a record's city and hour are both in the set.
func (f FilterSet) Matches(r CollisionRecord) bool {
	return slices.Contains(f.Cities, r.City) && slices.Contains(f.Hours, r.Hour)
}
