package serviceimpl

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
)

// PrioritizationTracker ติดตาม state machine ของ prioritization ต่อ folder
// idle → fetching → local_sort|remote_rank → committing → idle, หรือ error
// แต่ละ run มี id ของตัวเอง run ที่ถูกแทนที่แล้วจะแก้ state ไม่ได้อีก
type PrioritizationTracker struct {
	mu        sync.Mutex
	active    map[mutation.Scope]*trackedRun
	store     ports.RunStateStorePort
	publisher ports.TaskEventPublisherPort
	ttl       time.Duration
	now       func() time.Time
}

type trackedRun struct {
	lockToken string
	state     ports.RunState
}

// StaleRun run ที่ค้าง พร้อม lock token ที่มันถืออยู่
type StaleRun struct {
	Scope     mutation.Scope
	RunID     string
	LockToken string
}

// NewPrioritizationTracker store และ publisher เป็น nil ได้
func NewPrioritizationTracker(store ports.RunStateStorePort, publisher ports.TaskEventPublisherPort, ttl time.Duration) *PrioritizationTracker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PrioritizationTracker{
		active:    make(map[mutation.Scope]*trackedRun),
		store:     store,
		publisher: publisher,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Begin เริ่ม run ใหม่ของ scope และคืน run id
func (t *PrioritizationTracker) Begin(ctx context.Context, scope mutation.Scope, lockToken string) string {
	now := t.now()
	run := &trackedRun{
		lockToken: lockToken,
		state: ports.RunState{
			RunID:     uuid.NewString(),
			UserID:    scope.UserID,
			FolderID:  scope.FolderID,
			Phase:     ports.RunFetching,
			StartedAt: now,
			UpdatedAt: now,
		},
	}
	t.mu.Lock()
	t.active[scope] = run
	snapshot := run.state
	t.mu.Unlock()
	t.emit(ctx, &snapshot)
	return snapshot.RunID
}

// Advance คืน false ถ้า run นี้ไม่ใช่ run ปัจจุบันของ scope แล้ว
func (t *PrioritizationTracker) Advance(ctx context.Context, scope mutation.Scope, runID string, phase ports.RunPhase) bool {
	t.mu.Lock()
	run, ok := t.current(scope, runID)
	if !ok {
		t.mu.Unlock()
		return false
	}
	run.state.Phase = phase
	run.state.UpdatedAt = t.now()
	snapshot := run.state
	t.mu.Unlock()
	t.emit(ctx, &snapshot)
	return true
}

func (t *PrioritizationTracker) Finish(ctx context.Context, scope mutation.Scope, runID string) {
	t.end(ctx, scope, runID, ports.RunIdle, "")
}

// Fail จบ run ด้วย error; trigger ครั้งต่อไปเริ่มใหม่จาก fetching
func (t *PrioritizationTracker) Fail(ctx context.Context, scope mutation.Scope, runID string, err error) {
	t.end(ctx, scope, runID, ports.RunError, err.Error())
}

// current ต้องถือ t.mu
func (t *PrioritizationTracker) current(scope mutation.Scope, runID string) (*trackedRun, bool) {
	run, ok := t.active[scope]
	if !ok || run.state.RunID != runID {
		return nil, false
	}
	return run, true
}

func (t *PrioritizationTracker) end(ctx context.Context, scope mutation.Scope, runID string, phase ports.RunPhase, msg string) {
	t.mu.Lock()
	run, ok := t.current(scope, runID)
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.active, scope)
	run.state.Phase = phase
	run.state.Error = msg
	run.state.UpdatedAt = t.now()
	snapshot := run.state
	t.mu.Unlock()
	t.emit(ctx, &snapshot)
}

// Get คืน state ล่าสุด: run ที่ active ใน instance นี้ก่อน แล้วค่อยถาม store
func (t *PrioritizationTracker) Get(ctx context.Context, scope mutation.Scope) (*ports.RunState, error) {
	t.mu.Lock()
	if run, ok := t.active[scope]; ok {
		snapshot := run.state
		t.mu.Unlock()
		return &snapshot, nil
	}
	t.mu.Unlock()

	if t.store != nil {
		state, err := t.store.GetRunState(ctx, scope.UserID, scope.FolderID)
		if err != nil {
			return nil, err
		}
		if state != nil {
			return state, nil
		}
	}
	return &ports.RunState{UserID: scope.UserID, FolderID: scope.FolderID, Phase: ports.RunIdle}, nil
}

// Stale runs ที่ไม่ขยับเลยนานกว่า olderThan
func (t *PrioritizationTracker) Stale(olderThan time.Duration) []StaleRun {
	cutoff := t.now().Add(-olderThan)
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []StaleRun
	for scope, run := range t.active {
		if run.state.UpdatedAt.Before(cutoff) {
			out = append(out, StaleRun{Scope: scope, RunID: run.state.RunID, LockToken: run.lockToken})
		}
	}
	return out
}

func (t *PrioritizationTracker) emit(ctx context.Context, state *ports.RunState) {
	if t.store != nil {
		if err := t.store.SaveRunState(ctx, state, t.ttl); err != nil {
			logger.WarnContext(ctx, "Failed to save prioritization state", "folder_id", state.FolderID, "error", err)
		}
	}
	if t.publisher != nil {
		event := &ports.TaskEvent{
			Type:     ports.TaskEventPrioritizeState,
			UserID:   state.UserID,
			FolderID: state.FolderID,
			Run:      state,
			At:       state.UpdatedAt,
		}
		if err := t.publisher.PublishTaskEvent(ctx, event); err != nil {
			logger.WarnContext(ctx, "Failed to publish prioritization state", "folder_id", state.FolderID, "error", err)
		}
	}
}
