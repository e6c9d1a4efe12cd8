package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
)

// ErrNotFound is returned when no report has been loaded for a source.
var ErrNotFound = errors.New("no report for source")

// MemoryStore keeps the most recent reports per source in memory.
// It implements pipeline.ReportSink and backs the HTTP query API.
type MemoryStore struct {
	mu sync.RWMutex

	// key: report source, value: reports oldest first
	data map[string][]domain.Report

	maxHistory int
}

// NewMemoryStore creates a MemoryStore. If maxHistory is <= 0 only the latest
// report per source is kept.
func NewMemoryStore(maxHistory int) *MemoryStore {
	if maxHistory <= 0 {
		maxHistory = 1
	}
	return &MemoryStore{
		data:       make(map[string][]domain.Report),
		maxHistory: maxHistory,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

// LoadReport appends a report for its source and enforces retention.
func (s *MemoryStore) LoadReport(_ context.Context, report domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[report.Source], report)
	if over := len(history) - s.maxHistory; over > 0 {
		history = history[over:]
	}
	s.data[report.Source] = history
	return nil
}

// Latest returns the most recent report for a source.
func (s *MemoryStore) Latest(source string) (domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[source]
	if len(history) == 0 {
		return domain.Report{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// History returns every retained report for a source, oldest first.
func (s *MemoryStore) History(source string) ([]domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[source]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return slices.Clone(history), nil
}

// Sources returns the sources with at least one report, sorted.
func (s *MemoryStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make([]string, 0, len(s.data))
	for src := range s.data {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	return sources
}
