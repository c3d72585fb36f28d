package navigator

import (
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-screener/pkg/classify"
	"github.com/goliatone/go-screener/pkg/model"
)

// Snapshot is a detached copy of the session state. Mutating it has no
// effect on the session.
type Snapshot struct {
	ID         string               `json:"id"`
	Status     Status               `json:"status"`
	Step       int                  `json:"step"`
	Steps      int                  `json:"steps"`
	Started    bool                 `json:"started"`
	Captured   []model.Values       `json:"captured"`
	Committed  []model.Values       `json:"committed"`
	Outcomes   [][]classify.Outcome `json:"outcomes"`
	Submitting bool                 `json:"submitting"`
	Submitted  bool                 `json:"submitted"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Status:     s.status,
		Step:       s.step,
		Steps:      len(s.tree.Steps),
		Started:    s.started,
		Captured:   s.captured,
		Committed:  s.committed,
		Outcomes:   s.outcomes,
		Submitting: s.submitting,
		Submitted:  s.submitted,
	}
	return deepcopy.Copy(snap).(Snapshot)
}
