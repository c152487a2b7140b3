package supportstate

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/optionpulse/internal/contracts"
)

// Memory keeps support state in process; used by tests and one-shot runs
type Memory struct {
	mu     sync.RWMutex
	values map[contracts.SupportKey]dayValue
	now    func() time.Time
}

type dayValue struct {
	day   string
	value contracts.SupportFrom
}

func NewMemory() *Memory {
	return &Memory{values: make(map[contracts.SupportKey]dayValue), now: time.Now}
}

// Get ignores a value written on an earlier trading day
func (m *Memory) Get(_ context.Context, key contracts.SupportKey) (contracts.SupportFrom, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok || v.day != TradingDay(m.now()) {
		return "", false, nil
	}
	return v.value, true, nil
}

func (m *Memory) Set(_ context.Context, key contracts.SupportKey, value contracts.SupportFrom) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = dayValue{day: TradingDay(m.now()), value: value}
	return nil
}

// Len is the number of stored keys
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Stateless never remembers anything, so COA1 always uses the freshly computed source
type Stateless struct{}

func (Stateless) Get(context.Context, contracts.SupportKey) (contracts.SupportFrom, bool, error) {
	return "", false, nil
}

func (Stateless) Set(context.Context, contracts.SupportKey, contracts.SupportFrom) error {
	return nil
}
