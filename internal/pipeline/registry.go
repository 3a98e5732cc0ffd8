package pipeline

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mrz1836/forge/internal/constants"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// RunInfo describes an in-flight run.
type RunInfo struct {
	TaskID    string          `json:"task_id"`
	Stage     constants.Stage `json:"stage"`
	StartedAt time.Time       `json:"started_at"`
}

// Registry tracks in-flight runs. It is safe for concurrent use; one
// Registry may be shared by several orchestrators.
type Registry struct {
	mu   sync.RWMutex
	runs map[string]RunInfo
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]RunInfo)}
}

// Register records a new run. It fails if the task ID is already running.
func (r *Registry) Register(taskID string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runs[taskID]; exists {
		return fmt.Errorf("%w: %s", forgeerrors.ErrRunAlreadyActive, taskID)
	}
	r.runs[taskID] = RunInfo{TaskID: taskID, Stage: constants.StagePlan, StartedAt: startedAt}
	return nil
}

// SetStage updates the current stage of a registered run.
func (r *Registry) SetStage(taskID string, stage constants.Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.runs[taskID]; ok {
		info.Stage = stage
		r.runs[taskID] = info
	}
}

// Unregister removes a run. Unknown IDs are ignored.
func (r *Registry) Unregister(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, taskID)
}

// Get returns the run with the given task ID.
func (r *Registry) Get(taskID string) (RunInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.runs[taskID]
	return info, ok
}

// List returns all in-flight runs, oldest first.
func (r *Registry) List() []RunInfo {
	r.mu.RLock()
	out := make([]RunInfo, 0, len(r.runs))
	for _, info := range r.runs {
		out = append(out, info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].TaskID < out[j].TaskID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Len returns the number of in-flight runs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runs)
}
