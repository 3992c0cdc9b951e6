package carbon

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the ledger in memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add merges r into the day bucket of its strategy.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := s.data[r.Strategy]
	if days == nil {
		days = map[time.Time]*Record{}
		s.data[r.Strategy] = days
	}
	d := Day(r.Date)
	rec := days[d]
	if rec == nil {
		rec = &Record{Strategy: r.Strategy, Date: d}
		days[d] = rec
	}
	rec.Decisions += max(r.Decisions, 1)
	rec.EnergyMWh += r.EnergyMWh
	rec.CarbonTonnes += r.CarbonTonnes
	rec.CostTotal += r.CostTotal
	return nil
}

// Query returns the day buckets between start and end inclusive, oldest first.
func (s *MemoryStore) Query(strategy string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, end = Day(start), Day(end)
	var res []Record
	for d, r := range s.data[strategy] {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

// Prune drops buckets older than the day of before and returns how many went.
func (s *MemoryStore) Prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cut := Day(before)
	n := 0
	for strategy, days := range s.data {
		for d := range days {
			if d.Before(cut) {
				delete(days, d)
				n++
			}
		}
		if len(days) == 0 {
			delete(s.data, strategy)
		}
	}
	return n
}
