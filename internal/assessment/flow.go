package assessment

import (
	"sync"
	"time"

	"FireGar/internal/models/domain"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Step identifies the wizard step an in-progress assessment is on.
type Step int

const (
	StepDetails Step = iota + 1
	StepRiskFactors
	StepMitigation
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepRiskFactors:
		return "risk_factors"
	case StepMitigation:
		return "mitigation"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// Flow is one user's in-progress assessment: the persisted draft, the edit
// buffer bound to the current form, and the wizard position.
type Flow struct {
	Assessment *domain.Assessment
	Buffer     *EditBuffer
	Step       Step

	// LastSaveError holds the most recent step-transition persistence
	// failure for non-blocking surfacing; cleared on the next successful
	// save.
	LastSaveError string
}

// flowTTL is the inactivity timeout for an editing session. An expired
// flow is dropped from memory only; the draft stays in the database and
// can be resumed.
const flowTTL = 12 * time.Hour

type flowEntry struct {
	flow      *Flow
	expiresAt time.Time
}

// flowStore holds active flows keyed by user id.
type flowStore struct {
	clock clockwork.Clock
	mu    sync.RWMutex
	data  map[uuid.UUID]*flowEntry
}

func newFlowStore(clock clockwork.Clock) *flowStore {
	return &flowStore{
		clock: clock,
		data:  make(map[uuid.UUID]*flowEntry),
	}
}

func (s *flowStore) get(userID uuid.UUID) (*Flow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[userID]
	if !ok || s.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.flow, true
}

func (s *flowStore) set(userID uuid.UUID, flow *Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = &flowEntry{
		flow:      flow,
		expiresAt: s.clock.Now().Add(flowTTL),
	}
}

func (s *flowStore) touch(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[userID]; ok {
		e.expiresAt = s.clock.Now().Add(flowTTL)
	}
}

func (s *flowStore) clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
}
