package probe

import (
	"sort"
	"sync"
	"time"
)

// Stats собирает статистику серии запросов
type Stats struct {
	mu           sync.Mutex
	Total        int
	Success      int
	Errors       map[string]int
	StatusCodes  map[int]int
	TTFB         []time.Duration
	Connect      []time.Duration
	TLSHandshake []time.Duration
	TotalLatency []time.Duration
	TotalBytes   int64
}

// NewStats создает новую структуру статистики
func NewStats() *Stats {
	return &Stats{
		Errors:      make(map[string]int),
		StatusCodes: make(map[int]int),
	}
}

// Add добавляет метрики запроса в статистику
func (s *Stats) Add(m Metrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Total++
	if m.Success {
		s.Success++
		s.StatusCodes[m.StatusCode]++
	} else {
		s.Errors[m.Error]++
	}

	if m.TTFB > 0 {
		s.TTFB = append(s.TTFB, m.TTFB)
	}
	if m.Connect > 0 {
		s.Connect = append(s.Connect, m.Connect)
	}
	if m.TLSHandshake > 0 {
		s.TLSHandshake = append(s.TLSHandshake, m.TLSHandshake)
	}
	if m.TotalLatency > 0 {
		s.TotalLatency = append(s.TotalLatency, m.TotalLatency)
	}
	s.TotalBytes += m.BytesRead
}

// SuccessRate доля успешных запросов в процентах
func (s *Stats) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Total == 0 {
		return 0
	}
	return float64(s.Success) / float64(s.Total) * 100
}

// Percentile вычисляет перцентиль для слайса длительностей
func Percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	index := int(float64(len(sorted)) * p / 100.0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
