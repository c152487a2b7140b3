package symbolconfig

// File is the root of config/symbols.yaml
type File struct {
	Defaults Defaults       `yaml:"defaults" json:"defaults"`
	Symbols  []SymbolConfig `yaml:"symbols" json:"symbols"`
}

// Defaults fill any per-symbol value left at zero
type Defaults struct {
	StrikeStep     int `yaml:"strike_step" json:"strike_step"`
	StrikeRange    int `yaml:"strike_range" json:"strike_range"`
	TopExpiryCount int `yaml:"top_expiry_count" json:"top_expiry_count"`
}

// SymbolConfig 심볼별 엔진 설정
type SymbolConfig struct {
	Symbol     string `yaml:"symbol" json:"symbol"`
	StrikeStep int    `yaml:"strike_step" json:"strike_step"`
	// StrikeRange is a pointer because 0 (ATM only) is a valid window
	StrikeRange *int `yaml:"strike_range,omitempty" json:"strike_range,omitempty"`

	// AutoFillExpiries takes the nearest TopExpiryCount listed expiries.
	// When false, Expiry must be set.
	AutoFillExpiries bool   `yaml:"auto_fill_expiries" json:"auto_fill_expiries"`
	Expiry           string `yaml:"expiry,omitempty" json:"expiry,omitempty"`
	TopExpiryCount   int    `yaml:"top_expiry_count,omitempty" json:"top_expiry_count,omitempty"`
}

// Lookup returns the config for symbol (exact match)
func (f *File) Lookup(symbol string) (SymbolConfig, bool) {
	for _, s := range f.Symbols {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return SymbolConfig{}, false
}

// Names lists configured symbols in file order
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Symbols))
	for _, s := range f.Symbols {
		names = append(names, s.Symbol)
	}
	return names
}

// Range returns the strike range limit N
func (s SymbolConfig) Range() int {
	if s.StrikeRange == nil {
		return 0
	}
	return *s.StrikeRange
}

func (f *File) applyDefaults() {
	for i := range f.Symbols {
		s := &f.Symbols[i]
		if s.StrikeStep == 0 {
			s.StrikeStep = f.Defaults.StrikeStep
		}
		if s.StrikeRange == nil {
			n := f.Defaults.StrikeRange
			s.StrikeRange = &n
		}
		if s.TopExpiryCount == 0 {
			s.TopExpiryCount = f.Defaults.TopExpiryCount
		}
	}
}
