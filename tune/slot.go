package tune

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/livetune/parse"
)

// Slot is one bindable memory location plus its default. The set of slot
// kinds is closed: integers, floats, booleans, strings, and their
// comma-separated sequences. The bound variable is owned by the caller,
// who must keep it alive while bound.
type Slot interface {
	// set parses raw and writes the result into the bound variable.
	set(raw string) error
	// reset writes the declared default into the bound variable.
	reset()
}

type intSlot struct {
	target *int64
	def    int64
}

func (s *intSlot) set(raw string) error {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", raw)
	}
	*s.target = v
	return nil
}

func (s *intSlot) reset() { *s.target = s.def }

type floatSlot struct {
	target *float64
	def    float64
}

func (s *floatSlot) set(raw string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	*s.target = v
	return nil
}

func (s *floatSlot) reset() { *s.target = s.def }

type boolSlot struct {
	target *bool
	def    bool
}

func (s *boolSlot) set(raw string) error {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "on", "1":
		*s.target = true
	case "false", "no", "off", "0":
		*s.target = false
	default:
		return fmt.Errorf("not a boolean: %q", raw)
	}
	return nil
}

func (s *boolSlot) reset() { *s.target = s.def }

type stringSlot struct {
	target *string
	def    string
}

func (s *stringSlot) set(raw string) error {
	*s.target = parse.Unquote(strings.TrimSpace(raw))
	return nil
}

func (s *stringSlot) reset() { *s.target = s.def }

type intsSlot struct {
	target *[]int64
	def    []int64
}

func (s *intsSlot) set(raw string) error {
	parts := splitSequence(raw)
	values := make([]int64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return fmt.Errorf("not an integer sequence: %q", raw)
		}
		values = append(values, v)
	}
	*s.target = values
	return nil
}

func (s *intsSlot) reset() { *s.target = append([]int64(nil), s.def...) }

type floatsSlot struct {
	target *[]float64
	def    []float64
}

func (s *floatsSlot) set(raw string) error {
	parts := splitSequence(raw)
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("not a number sequence: %q", raw)
		}
		values = append(values, v)
	}
	*s.target = values
	return nil
}

func (s *floatsSlot) reset() { *s.target = append([]float64(nil), s.def...) }

func splitSequence(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Int binds an int64 variable with a default.
func Int(target *int64, def int64) Slot { return &intSlot{target: target, def: def} }

// Float binds a float64 variable with a default.
func Float(target *float64, def float64) Slot { return &floatSlot{target: target, def: def} }

// Bool binds a bool variable with a default. Accepted spellings:
// true/false, yes/no, on/off, 1/0 (case-insensitive).
func Bool(target *bool, def bool) Slot { return &boolSlot{target: target, def: def} }

// String binds a string variable with a default. Surrounding quotes are
// stripped.
func String(target *string, def string) Slot { return &stringSlot{target: target, def: def} }

// Ints binds a small integer sequence, parsed from comma-separated text
// such as "1, 2, 3" or "[1,2,3]".
func Ints(target *[]int64, def []int64) Slot { return &intsSlot{target: target, def: def} }

// Floats binds a small float sequence, parsed from comma-separated text.
func Floats(target *[]float64, def []float64) Slot { return &floatsSlot{target: target, def: def} }
