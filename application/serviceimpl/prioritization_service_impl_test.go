package serviceimpl

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/ports"
	"nextup-api/domain/services"
	"nextup-api/infrastructure/memstore"
)

type fakeRanker struct {
	calls  int
	result func(req *ports.RankingRequest) (*ports.RankingResult, error)
}

func (r *fakeRanker) Rank(ctx context.Context, req *ports.RankingRequest) (*ports.RankingResult, error) {
	r.calls++
	return r.result(req)
}

type phaseRecorder struct {
	mu     sync.Mutex
	phases []ports.RunPhase
}

func (p *phaseRecorder) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	if event.Type == ports.TaskEventPrioritizeState {
		p.mu.Lock()
		p.phases = append(p.phases, event.Run.Phase)
		p.mu.Unlock()
	}
	return nil
}

func newPrioritizationService(f *fixture, ranker ports.RankingPort, persist bool, events ports.TaskEventPublisherPort) (services.PrioritizationService, *PrioritizationTracker) {
	tracker := NewPrioritizationTracker(memstore.NewRunStateStore(), events, time.Minute)
	svc := NewPrioritizationService(
		PrioritizationConfig{PersistPriority: persist},
		f.store.Tasks(), f.store.Folders(), f.executor, ranker, f.lock, tracker, nil,
	)
	return svc, tracker
}

func withDeadlines(f *fixture, tasks []*models.Task, days ...int) {
	for i, d := range days {
		deadline := fixedNow.AddDate(0, 0, d)
		tasks[i].Deadline = &deadline
	}
	f.store.Seed(tasks...)
}

func rankIDs(ids []uuid.UUID, priority models.Priority) func(*ports.RankingRequest) (*ports.RankingResult, error) {
	return func(*ports.RankingRequest) (*ports.RankingResult, error) {
		res := &ports.RankingResult{}
		for _, id := range ids {
			res.Tasks = append(res.Tasks, ports.RankedTask{ID: id, EstimatedMinutes: 10, Priority: priority})
		}
		return res, nil
	}
}

func TestPrioritizeEmptyFolder(t *testing.T) {
	f := newFixture(t)
	ranker := &fakeRanker{}
	svc, _ := newPrioritizationService(f, ranker, false, nil)

	res, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != services.StatusNothingToPrioritize {
		t.Errorf("status = %s", res.Status)
	}
	if ranker.calls != 0 || f.store.BatchCount() != 0 {
		t.Errorf("ranker calls = %d, batches = %d", ranker.calls, f.store.BatchCount())
	}
}

func TestPrioritizeDeadlineShortcut(t *testing.T) {
	f := newFixture(t)
	tasks := f.seed("D3", "D1", "D2")
	withDeadlines(f, tasks, 3, 1, 2)
	ranker := &fakeRanker{}
	svc, _ := newPrioritizationService(f, ranker, false, nil)

	res, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != ports.RunLocalSort || ranker.calls != 0 {
		t.Errorf("mode = %s, ranker calls = %d", res.Mode, ranker.calls)
	}
	if got := f.incompleteTitles(t); !equalStrings(got, []string{"D1", "D2", "D3"}) {
		t.Errorf("sequence = %q", got)
	}

	first := f.orders(t)
	again, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.Updated != 0 {
		t.Errorf("second run wrote %d documents", again.Updated)
	}
	for title, order := range f.orders(t) {
		if first[title] != order {
			t.Errorf("%s moved from %d to %d", title, first[title], order)
		}
	}
}

func TestPrioritizeRemoteRank(t *testing.T) {
	f := newFixture(t)
	tasks := f.seed("A", "B", "C")
	events := &phaseRecorder{}
	// B ไม่อยู่ในคำตอบ ต้องต่อท้าย
	ranker := &fakeRanker{result: rankIDs([]uuid.UUID{tasks[2].ID, tasks[0].ID}, models.PriorityHigh)}
	svc, _ := newPrioritizationService(f, ranker, false, events)

	res, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Mode != ports.RunRemoteRank || ranker.calls != 1 {
		t.Errorf("mode = %s, calls = %d", res.Mode, ranker.calls)
	}
	if got := f.incompleteTitles(t); !equalStrings(got, []string{"C", "A", "B"}) {
		t.Errorf("sequence = %q", got)
	}

	if res.Tasks[0].Priority != models.PriorityHigh || res.Tasks[0].EstimatedMinutes == nil {
		t.Errorf("annotation missing: %+v", res.Tasks[0])
	}
	if res.Tasks[2].EstimatedMinutes != nil {
		t.Error("unranked task has an estimate")
	}

	stored, _ := f.store.Tasks().ListIncomplete(context.Background(), f.user, f.folder.ID)
	for _, task := range stored {
		if task.Priority != nil {
			t.Errorf("priority persisted for %s without the option", task.Title)
		}
	}

	want := []ports.RunPhase{ports.RunFetching, ports.RunRemoteRank, ports.RunCommitting, ports.RunIdle}
	if len(events.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", events.phases, want)
	}
	for i := range want {
		if events.phases[i] != want[i] {
			t.Errorf("phase %d = %s, want %s", i, events.phases[i], want[i])
		}
	}
}

func TestPrioritizePersistPriority(t *testing.T) {
	f := newFixture(t)
	tasks := f.seed("A", "B")
	ranker := &fakeRanker{result: rankIDs([]uuid.UUID{tasks[1].ID, tasks[0].ID}, models.PriorityLow)}
	svc, _ := newPrioritizationService(f, ranker, true, nil)

	if _, err := svc.Prioritize(context.Background(), f.user, f.folder.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.store.Tasks().ListIncomplete(context.Background(), f.user, f.folder.ID)
	for _, task := range stored {
		if task.Priority == nil || *task.Priority != models.PriorityLow {
			t.Errorf("%s priority = %v", task.Title, task.Priority)
		}
	}
}

func TestPrioritizeFailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		result  func(tasks []*models.Task) func(*ports.RankingRequest) (*ports.RankingResult, error)
		wantErr error
	}{
		{
			name: "unknown id",
			result: func(tasks []*models.Task) func(*ports.RankingRequest) (*ports.RankingResult, error) {
				return rankIDs([]uuid.UUID{tasks[1].ID, uuid.New()}, models.PriorityMedium)
			},
			wantErr: services.ErrMalformedRanking,
		},
		{
			name: "duplicate id",
			result: func(tasks []*models.Task) func(*ports.RankingRequest) (*ports.RankingResult, error) {
				return rankIDs([]uuid.UUID{tasks[1].ID, tasks[1].ID}, models.PriorityMedium)
			},
			wantErr: services.ErrMalformedRanking,
		},
		{
			name: "bad priority",
			result: func(tasks []*models.Task) func(*ports.RankingRequest) (*ports.RankingResult, error) {
				return rankIDs([]uuid.UUID{tasks[1].ID}, models.Priority("Urgent"))
			},
			wantErr: services.ErrMalformedRanking,
		},
		{
			name: "collaborator error",
			result: func([]*models.Task) func(*ports.RankingRequest) (*ports.RankingResult, error) {
				return func(*ports.RankingRequest) (*ports.RankingResult, error) {
					return nil, ports.ErrRankingUnavailable
				}
			},
			wantErr: services.ErrRankingUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tasks := f.seed("A", "B")
			ranker := &fakeRanker{result: tt.result(tasks)}
			svc, _ := newPrioritizationService(f, ranker, false, nil)

			_, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if f.store.BatchCount() != 0 {
				t.Error("orders written after a failed ranking")
			}

			state, _ := svc.GetRunState(context.Background(), f.user, f.folder.ID)
			if state.Phase != ports.RunError || state.Error == "" {
				t.Errorf("state = %+v, want error", state)
			}

			// trigger ใหม่ได้ทันที (lock ถูกปล่อยแล้ว)
			ranker.result = rankIDs([]uuid.UUID{tasks[1].ID, tasks[0].ID}, models.PriorityMedium)
			if _, err := svc.Prioritize(context.Background(), f.user, f.folder.ID); err != nil {
				t.Errorf("re-trigger failed: %v", err)
			}
		})
	}
}

func TestPrioritizeBusyAndUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("busy", func(t *testing.T) {
		f := newFixture(t)
		f.seed("A")
		svc, _ := newPrioritizationService(f, &fakeRanker{}, false, nil)
		_, _, _ = f.lock.TryLock(ctx, scopeOf(f), time.Minute)

		if _, err := svc.Prioritize(ctx, f.user, f.folder.ID); !errors.Is(err, services.ErrFolderBusy) {
			t.Errorf("err = %v, want ErrFolderBusy", err)
		}
	})

	t.Run("no ranker configured", func(t *testing.T) {
		f := newFixture(t)
		f.seed("A")
		svc, _ := newPrioritizationService(f, nil, false, nil)

		if _, err := svc.Prioritize(ctx, f.user, f.folder.ID); !errors.Is(err, services.ErrRankingUnavailable) {
			t.Errorf("err = %v, want ErrRankingUnavailable", err)
		}
	})

	t.Run("unknown folder", func(t *testing.T) {
		f := newFixture(t)
		svc, _ := newPrioritizationService(f, &fakeRanker{}, false, nil)

		if _, err := svc.Prioritize(ctx, f.user, uuid.New()); !errors.Is(err, services.ErrFolderNotFound) {
			t.Errorf("err = %v, want ErrFolderNotFound", err)
		}
	})
}

func TestStuckDetectorReleasesFolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tracker := NewPrioritizationTracker(nil, nil, time.Minute)
	clock := &testClock{now: fixedNow}
	tracker.now = clock.Now

	scope := scopeOf(f)
	token, _, _ := f.lock.TryLock(ctx, scope, time.Hour)
	runID := tracker.Begin(ctx, scope, token)
	tracker.Advance(ctx, scope, runID, ports.RunRemoteRank)

	detector := NewPrioritizationStuckDetector(StuckDetectorConfig{RunTimeout: time.Minute}, tracker, f.lock, nil)
	if n := detector.RunDetection(ctx); n != 0 {
		t.Fatalf("fresh run marked stuck")
	}

	clock.Add(2 * time.Minute)
	if n := detector.RunDetection(ctx); n != 1 {
		t.Fatalf("marked = %d, want 1", n)
	}
	state, _ := tracker.Get(ctx, scope)
	// ไม่มี store: หลังจบ run จะคืน idle
	if state.Phase != ports.RunIdle {
		t.Errorf("phase = %s", state.Phase)
	}
	if tracker.Advance(ctx, scope, runID, ports.RunCommitting) {
		t.Error("failed run still advanced")
	}
	if _, ok, _ := f.lock.TryLock(ctx, scope, time.Minute); !ok {
		t.Error("folder lock not released")
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// gatedRanker บล็อกแต่ละ call จนกว่า test จะปิด gate ของ call นั้น
type gatedRanker struct {
	entered chan chan struct{}
	result  func(*ports.RankingRequest) (*ports.RankingResult, error)
}

func (r *gatedRanker) Rank(ctx context.Context, req *ports.RankingRequest) (*ports.RankingResult, error) {
	gate := make(chan struct{})
	r.entered <- gate
	<-gate
	return r.result(req)
}

type prioritizeOutcome struct {
	res *services.PrioritizationResult
	err error
}

func prioritizeAsync(svc services.PrioritizationService, f *fixture) <-chan prioritizeOutcome {
	done := make(chan prioritizeOutcome, 1)
	go func() {
		res, err := svc.Prioritize(context.Background(), f.user, f.folder.ID)
		done <- prioritizeOutcome{res: res, err: err}
	}()
	return done
}

func waitGate(t *testing.T, ranker *gatedRanker) chan struct{} {
	t.Helper()
	select {
	case gate := <-ranker.entered:
		return gate
	case <-time.After(2 * time.Second):
		t.Fatal("ranker was not called")
		return nil
	}
}

func TestTimedOutRunDoesNotDisturbItsSuccessor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.seed("A", "B")
	ranker := &gatedRanker{
		entered: make(chan chan struct{}, 4),
		result:  rankIDs([]uuid.UUID{tasks[1].ID, tasks[0].ID}, models.PriorityHigh),
	}
	svc, tracker := newPrioritizationService(f, ranker, false, nil)
	clock := &testClock{now: fixedNow}
	tracker.now = clock.Now
	detector := NewPrioritizationStuckDetector(StuckDetectorConfig{RunTimeout: time.Minute}, tracker, f.lock, nil)

	first := prioritizeAsync(svc, f)
	firstGate := waitGate(t, ranker)

	clock.Add(2 * time.Minute)
	if n := detector.RunDetection(ctx); n != 1 {
		t.Fatalf("marked = %d, want 1", n)
	}

	second := prioritizeAsync(svc, f)
	secondGate := waitGate(t, ranker)

	// run แรกตอบกลับมาหลังถูกปลดแล้ว
	close(firstGate)
	out := <-first
	if !errors.Is(out.err, services.ErrRunSuperseded) {
		t.Fatalf("timed out run err = %v, want ErrRunSuperseded", out.err)
	}
	if f.store.BatchCount() != 0 {
		t.Fatalf("timed out run committed %d batches", f.store.BatchCount())
	}

	state, _ := tracker.Get(ctx, scopeOf(f))
	if state.Phase != ports.RunRemoteRank {
		t.Errorf("successor phase = %s, want %s", state.Phase, ports.RunRemoteRank)
	}

	// lock ของ run ที่สองต้องยังอยู่
	third := prioritizeAsync(svc, f)
	select {
	case out := <-third:
		if !errors.Is(out.err, services.ErrFolderBusy) {
			t.Errorf("overlapping trigger err = %v, want ErrFolderBusy", out.err)
		}
	case gate := <-ranker.entered:
		close(gate)
		t.Fatal("overlapping trigger reached the ranker while the successor was running")
	case <-time.After(2 * time.Second):
		t.Fatal("overlapping trigger did not return")
	}

	close(secondGate)
	out = <-second
	if out.err != nil {
		t.Fatalf("successor err = %v", out.err)
	}
	if got := f.incompleteTitles(t); !equalStrings(got, []string{"B", "A"}) {
		t.Errorf("order = %v, want [B A]", got)
	}
	if f.store.BatchCount() != 1 {
		t.Errorf("batches = %d, want 1", f.store.BatchCount())
	}
	if _, ok, _ := f.lock.TryLock(ctx, scopeOf(f), time.Minute); !ok {
		t.Error("folder lock not released after successor finished")
	}
}
