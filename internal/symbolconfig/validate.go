package symbolconfig

import (
	"fmt"
	"strings"
	"time"
)

// ExpiryLayout is the exchange's expiry date format (e.g. 25-Jan-2024)
const ExpiryLayout = "02-Jan-2006"

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every symbol after defaults were applied
func Validate(f *File) error {
	if len(f.Symbols) == 0 {
		return ValidationError{"symbols", "at least one symbol is required"}
	}

	seen := make(map[string]bool, len(f.Symbols))
	for i, s := range f.Symbols {
		field := func(name string) string { return fmt.Sprintf("symbols[%d].%s", i, name) }

		if strings.TrimSpace(s.Symbol) == "" {
			return ValidationError{field("symbol"), "required"}
		}
		if s.Symbol != strings.ToUpper(s.Symbol) {
			return ValidationError{field("symbol"), "must be upper case"}
		}
		if seen[s.Symbol] {
			return ValidationError{field("symbol"), "duplicate " + s.Symbol}
		}
		seen[s.Symbol] = true

		if s.StrikeStep <= 0 {
			return ValidationError{field("strike_step"), "must be > 0"}
		}
		if s.Range() < 0 {
			return ValidationError{field("strike_range"), "must be >= 0"}
		}

		if s.AutoFillExpiries {
			if s.TopExpiryCount <= 0 {
				return ValidationError{field("top_expiry_count"), "must be > 0 when auto_fill_expiries is set"}
			}
			continue
		}
		if s.Expiry == "" {
			return ValidationError{field("expiry"), "required when auto_fill_expiries is false"}
		}
		if _, err := time.Parse(ExpiryLayout, s.Expiry); err != nil {
			return ValidationError{field("expiry"), "must look like 25-Jan-2024"}
		}
	}

	return nil
}
