// Package ladder edits staged take-profit and stop-loss ladders.
//
// A ladder is an ordered list of levels, each pairing a trigger percentage
// (profit or loss) with the share of the position sold when it fires. All
// operations take a Ladder by value and return the edited copy together with
// the advisory validation message, so the UI layer only renders state.
package ladder

import (
	"errors"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

// Kind distinguishes take-profit from stop-loss ladders
type Kind int

const (
	TakeProfit Kind = iota
	StopLoss
)

// String returns the label used in the UI
func (k Kind) String() string {
	switch k {
	case TakeProfit:
		return "Take Profit"
	case StopLoss:
		return "Stop Loss"
	default:
		return "unknown"
	}
}

// TriggerLabel names the trigger column for this kind of ladder
func (k Kind) TriggerLabel() string {
	if k == StopLoss {
		return "Loss %"
	}
	return "Profit %"
}

// Field selects which value of a level is edited
type Field int

const (
	Trigger Field = iota
	Sell
)

// Validation messages
const (
	MsgExceeds   = "Total sell percentage cannot exceed 100%"
	MsgMustEqual = "Total sell percentage must equal 100%"
	fullPosition = 100.0
	sumTolerance = 1e-9
)

var (
	// ErrLastLevel is returned when removing the only remaining level
	ErrLastLevel = errors.New("ladder must keep at least one level")
	// ErrIndex is returned for a level index outside the ladder
	ErrIndex = errors.New("level index out of range")
)

// Level is one rung of a ladder
type Level struct {
	Trigger float64
	Sell    float64
}

// IsZero reports whether the level is still at its default
func (l Level) IsZero() bool {
	return l.Trigger == 0 && l.Sell == 0
}

// Ladder holds the levels plus the editor state rendered around them
type Ladder struct {
	Kind    Kind
	Levels  []Level
	ViewAll bool
	Message string
}

// New returns a ladder with a single zero level
func New(kind Kind) Ladder {
	return Ladder{Kind: kind, Levels: []Level{{}}}
}

// FromLevels builds a ladder from stored levels. An empty input is seeded
// with one zero level; the validation message reflects the stored values.
func FromLevels(kind Kind, levels []Level) Ladder {
	if len(levels) == 0 {
		return New(kind)
	}
	l := Ladder{Kind: kind, Levels: append([]Level(nil), levels...)}
	l.Message = Validate(l.Levels)
	return l
}

// Add appends a zero level and reveals the full list. The validation message
// is left as it was: a zero level never changes the sum.
func (l Ladder) Add() Ladder {
	next := l.clone()
	next.Levels = append(next.Levels, Level{})
	next.ViewAll = true
	return next
}

// Remove deletes the level at index. The last remaining level cannot be removed.
func (l Ladder) Remove(index int) (Ladder, error) {
	if index < 0 || index >= len(l.Levels) {
		return l, ErrIndex
	}
	if !l.CanRemove() {
		return l, ErrLastLevel
	}

	next := l.clone()
	next.Levels = append(next.Levels[:index], next.Levels[index+1:]...)
	next.Message = Validate(next.Levels)
	return next, nil
}

// Update parses raw into the chosen field of the level at index and
// re-validates the ladder. Unparseable input becomes 0.
func (l Ladder) Update(index int, field Field, raw string) (Ladder, error) {
	if index < 0 || index >= len(l.Levels) {
		return l, ErrIndex
	}

	value := ParsePercent(raw)
	next := l.clone()
	switch field {
	case Trigger:
		next.Levels[index].Trigger = value
	case Sell:
		next.Levels[index].Sell = value
	}
	next.Message = Validate(next.Levels)
	return next, nil
}

// ToggleViewAll flips between showing the first level and all levels
func (l Ladder) ToggleViewAll() Ladder {
	next := l.clone()
	next.ViewAll = !next.ViewAll
	return next
}

// Visible returns the levels the editor renders
func (l Ladder) Visible() []Level {
	if l.ViewAll || len(l.Levels) <= 1 {
		return l.Levels
	}
	return l.Levels[:1]
}

// CanRemove reports whether a remove action should be offered
func (l Ladder) CanRemove() bool {
	return len(l.Levels) > 1
}

// Sum totals the sell percentage across all levels
func (l Ladder) Sum() float64 {
	return sumSell(l.Levels)
}

// Valid reports whether the ladder carries no validation message
func (l Ladder) Valid() bool {
	return l.Message == ""
}

// Validate returns the advisory message for a set of levels, or "" when the
// sell percentages are either all zero or add up to exactly 100.
func Validate(levels []Level) string {
	sum := sumSell(levels)
	switch {
	case sum > fullPosition+sumTolerance:
		return MsgExceeds
	case sum > sumTolerance && sum < fullPosition-sumTolerance && anyNonZero(levels):
		return MsgMustEqual
	default:
		return ""
	}
}

// ParsePercent converts form input into a percentage using the same
// leading-number rule as the other settings fields, so "50%" reads as 50.
// Input without a leading number becomes 0; negatives are clamped to 0.
func ParsePercent(raw string) float64 {
	v, ok := amount.LeadingFloat(raw)
	if !ok || v < 0 {
		return 0
	}
	return v
}

func sumSell(levels []Level) float64 {
	var sum float64
	for _, lvl := range levels {
		sum += lvl.Sell
	}
	return sum
}

func anyNonZero(levels []Level) bool {
	for _, lvl := range levels {
		if !lvl.IsZero() {
			return true
		}
	}
	return false
}

func (l Ladder) clone() Ladder {
	next := l
	next.Levels = append([]Level(nil), l.Levels...)
	return next
}
