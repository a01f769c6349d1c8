package seasonal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Calendar maps a location code and calendar month to a seasonal hint:
// the event name followed by one or two representative items.
type Calendar struct {
	rows map[string]map[time.Month][]string
}

// Default returns the built-in promotion calendar.
func Default() *Calendar {
	return &Calendar{rows: map[string]map[time.Month][]string{
		"US": {
			time.November: {"Thanksgiving", "turkey", "pumpkin pie"},
			time.December: {"Christmas", "gingerbread", "hot cocoa"},
			time.July:     {"Independence Day", "BBQ", "grill"},
		},
		"IN": {
			time.October:  {"Diwali", "sweets", "mithai"},
			time.November: {"Diwali", "sweets", "mithai"},
			time.August:   {"Raksha Bandhan", "laddu"},
		},
		"UK": {
			time.December: {"Christmas", "mince pies"},
		},
		"CA": {
			time.July: {"Canada Day", "BBQ"},
		},
	}}
}

// Lookup returns the hint configured for location in the month of now.
// Unknown locations and quiet months yield an empty list.
func (c *Calendar) Lookup(location string, now time.Time) []string {
	if c == nil {
		return nil
	}
	months, ok := c.rows[strings.ToUpper(location)]
	if !ok {
		return nil
	}
	hint := months[now.Month()]
	if len(hint) == 0 {
		return nil
	}
	out := make([]string, len(hint))
	copy(out, hint)
	return out
}

// Locations reports how many locations have at least one row.
func (c *Calendar) Locations() int {
	return len(c.rows)
}

// Set adds or replaces the row for location and month.
func (c *Calendar) Set(location string, month time.Month, hint []string) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("month %d out of range", month)
	}
	if len(hint) == 0 || strings.TrimSpace(hint[0]) == "" {
		return fmt.Errorf("%s/%d: hint needs an event name", location, month)
	}
	location = strings.ToUpper(strings.TrimSpace(location))
	if location == "" {
		return fmt.Errorf("empty location")
	}
	if c.rows == nil {
		c.rows = make(map[string]map[time.Month][]string)
	}
	if c.rows[location] == nil {
		c.rows[location] = make(map[time.Month][]string)
	}
	c.rows[location][month] = append([]string(nil), hint...)
	return nil
}

// file layout:
//
//	US:
//	  11: [Thanksgiving, turkey, pumpkin pie]
type fileRows map[string]map[int][]string

// Merge parses YAML rows and applies them on top of the calendar.
func (c *Calendar) Merge(data []byte) error {
	var rows fileRows
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("parse calendar: %w", err)
	}
	for location, months := range rows {
		for month, hint := range months {
			if err := c.Set(location, time.Month(month), hint); err != nil {
				return fmt.Errorf("calendar row: %w", err)
			}
		}
	}
	return nil
}

// Load returns the default calendar extended with rows from path.
// An empty path returns the defaults unchanged.
func Load(path string) (*Calendar, error) {
	cal := Default()
	if path == "" {
		return cal, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar file: %w", err)
	}
	if err := cal.Merge(data); err != nil {
		return nil, err
	}
	return cal, nil
}
