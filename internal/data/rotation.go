package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RotationEntry is one announcement in the bar rotation.
type RotationEntry struct {
	Text      string  `yaml:"text"`
	Fraction  float64 `yaml:"fraction"`
	Ticks     int64   `yaml:"ticks"`     // how long the entry stays up
	Countdown bool    `yaml:"countdown"` // drain the bar from Fraction to 0 over Ticks
}

// RotationTable cycles through announcements by server tick.
type RotationTable struct {
	entries []RotationEntry
	total   int64
}

// LoadRotation loads rotation.yaml.
func LoadRotation(path string) (*RotationTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rotation: %w", err)
	}
	var file struct {
		Entries []RotationEntry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rotation: %w", err)
	}
	return NewRotationTable(file.Entries)
}

// NewRotationTable validates entries and builds a table from them.
func NewRotationTable(entries []RotationEntry) (*RotationTable, error) {
	t := &RotationTable{entries: entries}
	for i, e := range entries {
		if e.Text == "" {
			return nil, fmt.Errorf("rotation entry %d: empty text", i)
		}
		if !(e.Fraction >= 0 && e.Fraction <= 1) {
			return nil, fmt.Errorf("rotation entry %d: fraction %v out of range", i, e.Fraction)
		}
		if e.Ticks < 1 {
			return nil, fmt.Errorf("rotation entry %d: ticks must be at least 1", i)
		}
		t.total += e.Ticks
	}
	return t, nil
}

// At returns the entry that is up at the given tick and the fill to show for
// it. ok is false for an empty table.
func (t *RotationTable) At(tick int64) (entry RotationEntry, fraction float64, ok bool) {
	if len(t.entries) == 0 {
		return RotationEntry{}, 0, false
	}
	pos := tick % t.total
	if pos < 0 {
		pos += t.total
	}
	for _, e := range t.entries {
		if pos < e.Ticks {
			fraction = e.Fraction
			if e.Countdown {
				fraction = e.Fraction * float64(e.Ticks-pos) / float64(e.Ticks)
			}
			return e, fraction, true
		}
		pos -= e.Ticks
	}
	// unreachable: pos < total
	return RotationEntry{}, 0, false
}

// Count returns the number of entries loaded.
func (t *RotationTable) Count() int {
	return len(t.entries)
}

// CycleTicks returns the length of one full rotation.
func (t *RotationTable) CycleTicks() int64 {
	return t.total
}
