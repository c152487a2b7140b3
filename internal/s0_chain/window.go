package s0_chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/optionpulse/internal/contracts"
)

// Config carries the two windowing knobs
type Config struct {
	StrikeRangeLimit int // strikes on each side of ATM
	StrikeStep       int
}

// Validate rejects a non-positive step or a negative range
func (c Config) Validate() error {
	if c.StrikeStep <= 0 {
		return &contracts.ConfigurationError{
			Field:   "strike_step",
			Message: fmt.Sprintf("must be positive, got %d", c.StrikeStep),
		}
	}
	if c.StrikeRangeLimit < 0 {
		return &contracts.ConfigurationError{
			Field:   "strike_range_limit",
			Message: fmt.Sprintf("must not be negative, got %d", c.StrikeRangeLimit),
		}
	}
	return nil
}

// RoundToStep rounds value to the nearest multiple of step, halves rounding up
func RoundToStep(value float64, step int) int {
	s := float64(step)
	return int(math.Floor(value/s+0.5)) * step
}

// SelectWindow returns validStrikes[idx-N .. idx+N] where idx is the position of atm.
// A window that does not fit inside validStrikes is a ConfigurationError, never clamped.
func SelectWindow(validStrikes []int, atm int, cfg Config) ([]int, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	strikes := append([]int(nil), validStrikes...)
	sort.Ints(strikes)

	idx := sort.SearchInts(strikes, atm)
	if idx >= len(strikes) || strikes[idx] != atm {
		return nil, &contracts.ConfigurationError{
			Field:   "atm_strike",
			Message: fmt.Sprintf("ATM strike %d is not a listed strike", atm),
		}
	}

	lo, hi := idx-cfg.StrikeRangeLimit, idx+cfg.StrikeRangeLimit
	if lo < 0 || hi >= len(strikes) {
		return nil, &contracts.ConfigurationError{
			Field: "strike_range_limit",
			Message: fmt.Sprintf("window [%d, %d] around ATM index %d exceeds %d listed strikes",
				lo, hi, idx, len(strikes)),
		}
	}

	return strikes[lo : hi+1], nil
}
