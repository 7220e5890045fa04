package service

import (
	"sync"
	"sync/atomic"

	"github.com/bruteforce-framework/bruteforce/internal/core/domain"
)

// SearchState is the termination state shared by the producer, the workers
// and the progress reporter of one search.
//
// status and result only change under mu. found and running mirror them as
// atomics so the hot worker loop can read them without locking; they are
// written under mu after result, so a reader that sees found==true and then
// calls Result gets the committed candidate.
type SearchState struct {
	mu     sync.Mutex
	status domain.SearchStatus
	result string

	found    atomic.Bool
	running  atomic.Bool
	attempts atomic.Uint64
}

func NewSearchState() *SearchState {
	return &SearchState{status: domain.StatusIdle}
}

// reset puts the state into Running with every field cleared.
func (s *SearchState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.result = ""
	s.found.Store(false)
	s.attempts.Store(0)
	s.status = domain.StatusRunning
	s.running.Store(true)
}

func (s *SearchState) AddAttempt() uint64 {
	return s.attempts.Add(1)
}

func (s *SearchState) Attempts() uint64 {
	return s.attempts.Load()
}

func (s *SearchState) Running() bool {
	return s.running.Load()
}

func (s *SearchState) Found() bool {
	return s.found.Load()
}

// Active reports whether workers should keep popping candidates.
func (s *SearchState) Active() bool {
	return s.running.Load() && !s.found.Load()
}

// Result returns the matched candidate. ok is false unless a match was
// committed.
func (s *SearchState) Result() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusSucceeded {
		return "", false
	}
	return s.result, true
}

func (s *SearchState) Status() domain.SearchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CommitMatch records candidate as the result. Only the first call during
// a running search succeeds; later matches are dropped.
func (s *SearchState) CommitMatch(candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusRunning {
		return false
	}
	s.result = candidate
	s.found.Store(true)
	s.running.Store(false)
	s.status = domain.StatusSucceeded
	return true
}

// Cancel moves a running search to Cancelled.
func (s *SearchState) Cancel() bool {
	return s.finish(domain.StatusCancelled)
}

// Finish moves a running search to Exhausted.
func (s *SearchState) Finish() bool {
	return s.finish(domain.StatusExhausted)
}

func (s *SearchState) finish(status domain.SearchStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusRunning {
		return false
	}
	s.running.Store(false)
	s.status = status
	return true
}

// Snapshot is a consistent copy of the state taken under its lock.
type Snapshot struct {
	Status   domain.SearchStatus
	Found    bool
	Result   string
	Running  bool
	Attempts uint64
}

func (s *SearchState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Status:   s.status,
		Found:    s.found.Load(),
		Result:   s.result,
		Running:  s.running.Load(),
		Attempts: s.attempts.Load(),
	}
}
