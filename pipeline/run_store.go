package pipeline

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// RunRecord is one pipeline run as surfaced by the run-history view.
type RunRecord struct {
	ID           string    `json:"id"`
	Question     string    `json:"question"`
	SourceType   string    `json:"source_type"`
	Status       RunStatus `json:"status"`
	Answer       string    `json:"answer,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	SubmittedAt  string    `json:"submitted_at"`
	CompletedAt  string    `json:"completed_at,omitempty"`
}

// RunStore keeps recent run records in memory. Finished records are
// dropped once they are older than the retention threshold passed to
// StartCleanup.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord

	timeProvider  TimeProvider
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	logger        *slog.Logger
}

func NewRunStore(logger *slog.Logger) *RunStore {
	return &RunStore{
		runs:         make(map[string]*RunRecord),
		timeProvider: &realTimeProvider{},
		logger:       logger,
	}
}

// Begin records a new run in the running state.
func (s *RunStore) Begin(id, question, sourceType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = &RunRecord{
		ID:          id,
		Question:    question,
		SourceType:  sourceType,
		Status:      StatusRunning,
		SubmittedAt: s.timeProvider.Now().Format(time.RFC3339),
	}
}

// Complete marks a run as finished with its answer.
func (s *RunStore) Complete(id, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.runs[id]
	if !exists {
		return
	}
	record.Status = StatusCompleted
	record.Answer = answer
	record.CompletedAt = s.timeProvider.Now().Format(time.RFC3339)
}

// Fail marks a run as finished with an error message.
func (s *RunStore) Fail(id, errorMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.runs[id]
	if !exists {
		return
	}
	record.Status = StatusFailed
	record.ErrorMessage = errorMessage
	record.CompletedAt = s.timeProvider.Now().Format(time.RFC3339)
}

// Get returns a copy of the record for id.
func (s *RunStore) Get(id string) (RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, exists := s.runs[id]
	if !exists {
		return RunRecord{}, false
	}
	return *record, true
}

// List returns copies of all records, most recently submitted first.
func (s *RunStore) List() []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].SubmittedAt != records[j].SubmittedAt {
			return records[i].SubmittedAt > records[j].SubmittedAt
		}
		return records[i].ID < records[j].ID
	})
	return records
}

// StartCleanup starts a goroutine that periodically drops finished run
// records older than threshold.
// - threshold: age after which a finished record is considered expired.
// - interval: how often the cleanup pass runs.
func (s *RunStore) StartCleanup(threshold, interval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *RunStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

func (s *RunStore) performCleanup(threshold time.Duration) {
	now := s.timeProvider.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, record := range s.runs {
		if record.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, record.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.runs, id)
			s.logger.Debug("Deleted expired run record",
				slog.String("run_id", id))
		}
	}
}
