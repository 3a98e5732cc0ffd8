// Package store persists pipeline execution results as JSON files under the
// FORGE home directory, one file per task, with atomic writes and per-task
// file locks.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/domain"
	forgeerrors "github.com/mrz1836/forge/internal/errors"
)

// LockTimeout is the maximum duration to wait for a result file lock.
const LockTimeout = 5 * time.Second

const (
	dirPerm  = 0o750
	filePerm = 0o600

	lockRetryInterval = 50 * time.Millisecond
	lockSuffix        = ".lock"
)

// validTaskIDRegex admits IDs that are safe as a single path component.
var validTaskIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Store defines result persistence.
type Store interface {
	// Save writes the result, replacing any earlier result for the same task.
	Save(ctx context.Context, result *domain.PipelineExecutionResult) error

	// Get returns the result for taskID or ErrResultNotFound.
	Get(ctx context.Context, taskID string) (*domain.PipelineExecutionResult, error)

	// List returns every stored result, newest first.
	List(ctx context.Context) ([]*domain.PipelineExecutionResult, error)
}

// FileStore implements Store on the local filesystem.
type FileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a FileStore rooted at forgeHome/results.
// An empty forgeHome uses ~/.forge.
func NewFileStore(forgeHome string, logger zerolog.Logger) (*FileStore, error) {
	if forgeHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		forgeHome = filepath.Join(home, constants.ForgeHome)
	}
	return &FileStore{
		dir:    filepath.Join(forgeHome, constants.ResultsDir),
		logger: logger,
	}, nil
}

// Dir returns the directory results are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// ValidateTaskID reports ErrInvalidTaskID for IDs that cannot be stored.
func ValidateTaskID(taskID string) error {
	if !validTaskIDRegex.MatchString(taskID) {
		return fmt.Errorf("%w: %q", forgeerrors.ErrInvalidTaskID, taskID)
	}
	return nil
}

// Save writes result atomically.
func (s *FileStore) Save(ctx context.Context, result *domain.PipelineExecutionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("failed to save result: %w", forgeerrors.ErrNilArtifact)
	}
	if err := ValidateTaskID(result.TaskID); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	lock, err := s.acquireLock(ctx, result.TaskID)
	if err != nil {
		return fmt.Errorf("failed to save result '%s': %w", result.TaskID, err)
	}
	defer func() { _ = releaseLock(lock) }()

	if result.SchemaVersion == "" {
		result.SchemaVersion = constants.ResultSchemaVersion
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result '%s': %w", result.TaskID, err)
	}
	if err := atomicWrite(s.path(result.TaskID), data); err != nil {
		return fmt.Errorf("failed to save result '%s': %w", result.TaskID, err)
	}

	s.logger.Debug().
		Str("task_id", result.TaskID).
		Str("path", s.path(result.TaskID)).
		Msg("pipeline result saved")
	return nil
}

// Get reads the result for taskID.
func (s *FileStore) Get(ctx context.Context, taskID string) (*domain.PipelineExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateTaskID(taskID); err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	data, err := os.ReadFile(s.path(taskID)) //#nosec G304 -- task id is validated as a single path component
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get result '%s': %w", taskID, forgeerrors.ErrResultNotFound)
		}
		return nil, fmt.Errorf("failed to read result '%s': %w", taskID, err)
	}

	var result domain.PipelineExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse result '%s': corrupted result file: %w", taskID, err)
	}
	return &result, nil
}

// List returns every readable result, newest first. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]*domain.PipelineExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*domain.PipelineExecutionResult{}, nil
		}
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]*domain.PipelineExecutionResult, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, constants.ResultFileExt) {
			continue
		}
		taskID := strings.TrimSuffix(name, constants.ResultFileExt)
		if ValidateTaskID(taskID) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := s.Get(ctx, taskID)
		if err != nil {
			s.logger.Warn().Err(err).Str("task_id", taskID).Msg("skipping unreadable result")
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].StartedAt.Equal(results[j].StartedAt) {
			return results[i].TaskID < results[j].TaskID
		}
		return results[i].StartedAt.After(results[j].StartedAt)
	})
	return results, nil
}

func (s *FileStore) path(taskID string) string {
	return filepath.Join(s.dir, taskID+constants.ResultFileExt)
}

// acquireLock takes the task's lock file, retrying until LockTimeout.
func (s *FileStore) acquireLock(ctx context.Context, taskID string) (*os.File, error) {
	lockPath := s.path(taskID) + lockSuffix
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is built from a validated id
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		if err := lockExclusive(f.Fd()); err == nil {
			return f, nil
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", forgeerrors.ErrLockTimeout)
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a temp file, syncs it, and renames it over path.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
