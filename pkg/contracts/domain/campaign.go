package domain

import (
	"fmt"
	"time"
)

// Campaign is a named field-visit window used as the reference window for
// outlier detection. End is exclusive.
type Campaign struct {
	Name  string    `json:"name" yaml:"name" validate:"required"`
	Start time.Time `json:"start" yaml:"start" validate:"required"`
	End   time.Time `json:"end" yaml:"end" validate:"required"`
}

// Contains reports whether ts falls in [Start, End)
func (c Campaign) Contains(ts time.Time) bool {
	return !ts.Before(c.Start) && ts.Before(c.End)
}

// Overlaps reports whether two campaigns share any instant
func (c Campaign) Overlaps(other Campaign) bool {
	return c.Start.Before(other.End) && other.Start.Before(c.End)
}

// String formats the campaign as "name [start, end)"
func (c Campaign) String() string {
	return fmt.Sprintf("%s [%s, %s)", c.Name, c.Start.Format(time.DateOnly), c.End.Format(time.DateOnly))
}

// CheckCampaigns verifies that every campaign has a positive length, names are
// unique and the windows are listed in chronological order without overlap.
func CheckCampaigns(campaigns []Campaign) error {
	names := make(map[string]bool, len(campaigns))
	for i, c := range campaigns {
		if !c.End.After(c.Start) {
			return fmt.Errorf("campaign %q ends before it starts", c.Name)
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate campaign name %q", c.Name)
		}
		names[c.Name] = true

		for _, prev := range campaigns[:i] {
			if prev.Overlaps(c) {
				return fmt.Errorf("campaign %s overlaps %s", prev, c)
			}
		}
		if i > 0 && c.Start.Before(campaigns[i-1].End) {
			return fmt.Errorf("campaign %s is listed after %s", c, campaigns[i-1])
		}
	}
	return nil
}
