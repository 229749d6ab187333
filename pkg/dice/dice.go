// Package dice parses and rolls tabletop dice notation such as "2d6",
// "1d20" or "4df" (Fate dice).
package dice

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const (
	MaxCount = 100
	MinFaces = 2
	MaxFaces = 9999
)

// ErrFormat is returned for anything that does not look like dice notation.
type ErrFormat struct {
	Input string
}

func (e ErrFormat) Error() string {
	return fmt.Sprintf("invalid dice notation %q: expected something like 2d6, 1d20 or 4df", e.Input)
}

// ErrBounds is returned for syntactically valid notation outside the
// supported limits.
type ErrBounds struct {
	Input  string
	Reason string
}

func (e ErrBounds) Error() string {
	return fmt.Sprintf("unsupported dice %q: %s", e.Input, e.Reason)
}

// Notation is a validated dice expression.
type Notation struct {
	Count int
	Faces int  // zero when Fate is set
	Fate  bool // "f" face spec: each die lands on -1, 0 or +1
}

// Parse validates a dice expression. Count must be in [1,100]; faces must
// be "f" or a number in [2,9999].
func Parse(s string) (Notation, error) {
	countStr, facesStr, ok := strings.Cut(s, "d")
	if !ok {
		return Notation{}, ErrFormat{Input: s}
	}

	count, err := strconv.Atoi(countStr)
	if err != nil {
		return Notation{}, ErrFormat{Input: s}
	}
	if count < 1 {
		return Notation{}, ErrBounds{Input: s, Reason: "must roll at least one die"}
	}
	if count > MaxCount {
		return Notation{}, ErrBounds{Input: s, Reason: fmt.Sprintf("at most %d dice per roll", MaxCount)}
	}

	if facesStr == "f" {
		return Notation{Count: count, Fate: true}, nil
	}

	faces, err := strconv.Atoi(facesStr)
	if err != nil {
		return Notation{}, ErrFormat{Input: s}
	}
	if faces < MinFaces || faces > MaxFaces {
		return Notation{}, ErrBounds{Input: s, Reason: fmt.Sprintf("faces must be between %d and %d", MinFaces, MaxFaces)}
	}

	return Notation{Count: count, Faces: faces}, nil
}

func (n Notation) String() string {
	if n.Fate {
		if n.Count == 1 {
			return "one Fate die"
		}
		return fmt.Sprintf("%d Fate dice", n.Count)
	}
	if n.Count == 1 {
		return fmt.Sprintf("one %d-sided die", n.Faces)
	}
	return fmt.Sprintf("%d %d-sided dice", n.Count, n.Faces)
}

// Roll holds the outcome of rolling a notation.
type Roll struct {
	Values []int `json:"values"`
	Fate   bool  `json:"fate,omitempty"`
}

// Roll produces one value per die. Numeric dice land in [1,Faces]; Fate
// dice land in {-1, 0, +1}.
func (n Notation) Roll(rng *rand.Rand) Roll {
	values := make([]int, n.Count)
	for i := range values {
		if n.Fate {
			values[i] = rng.Intn(3) - 1
		} else {
			values[i] = rng.Intn(n.Faces) + 1
		}
	}
	return Roll{Values: values, Fate: n.Fate}
}

// Total is the signed sum of all dice.
func (r Roll) Total() int {
	total := 0
	for _, v := range r.Values {
		total += v
	}
	return total
}

// Symbols renders the roll for display. Fate dice use -, · and + instead
// of numbers.
func (r Roll) Symbols() []string {
	out := make([]string, len(r.Values))
	for i, v := range r.Values {
		if !r.Fate {
			out[i] = strconv.Itoa(v)
			continue
		}
		switch v {
		case -1:
			out[i] = "-"
		case 1:
			out[i] = "+"
		default:
			out[i] = "·"
		}
	}
	return out
}

// Check rolls a single d20 and adds a flat bonus, for stat checks.
func Check(rng *rand.Rand, bonus int) (roll int, total int) {
	roll = rng.Intn(20) + 1
	return roll, roll + bonus
}
