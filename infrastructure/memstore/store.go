// Package memstore is an in-process document store. It backs
// STORE_DRIVER=memory and serves as the storage fake in service tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/domain/repositories"
)

type Store struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*models.Task
	folders map[uuid.UUID]*models.Folder
	users   map[uuid.UUID]*models.User

	batches  int
	failNext error
	now      func() time.Time
}

func New() *Store {
	return &Store{
		tasks:   make(map[uuid.UUID]*models.Task),
		folders: make(map[uuid.UUID]*models.Folder),
		users:   make(map[uuid.UUID]*models.User),
		now:     time.Now,
	}
}

func (s *Store) Tasks() *TaskStore     { return &TaskStore{s: s} }
func (s *Store) Folders() *FolderStore { return &FolderStore{s: s} }
func (s *Store) Users() *UserStore     { return &UserStore{s: s} }

// FailNextBatch ทำให้ ApplyBatch ครั้งถัดไป fail ด้วย err
func (s *Store) FailNextBatch(err error) {
	s.mu.Lock()
	s.failNext = err
	s.mu.Unlock()
}

// BatchCount จำนวน batch ที่ commit สำเร็จ
func (s *Store) BatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches
}

// Seed ใส่ task ตรงๆ โดยไม่ผ่าน batch
func (s *Store) Seed(tasks ...*models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.tasks[t.ID] = t.Clone()
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// Tasks
// ═══════════════════════════════════════════════════════════════════════════════

type TaskStore struct {
	s *Store
}

var (
	_ repositories.TaskRepository = (*TaskStore)(nil)
	_ ports.BatchWriterPort       = (*TaskStore)(nil)
)

func (ts *TaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()
	t, ok := ts.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return t.Clone(), nil
}

func (ts *TaskStore) ListByFolder(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	return ts.list(userID, folderID, func(*models.Task) bool { return true }), nil
}

func (ts *TaskStore) ListIncomplete(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	return ts.list(userID, folderID, func(t *models.Task) bool { return !t.Completed }), nil
}

func (ts *TaskStore) ListCompleted(ctx context.Context, userID, folderID uuid.UUID) ([]*models.Task, error) {
	return ts.list(userID, folderID, func(t *models.Task) bool { return t.Completed }), nil
}

// list sorted by completed asc, order asc, created_at asc
func (ts *TaskStore) list(userID, folderID uuid.UUID, keep func(*models.Task) bool) []*models.Task {
	ts.s.mu.RLock()
	defer ts.s.mu.RUnlock()

	var out []*models.Task
	for _, t := range ts.s.tasks {
		if t.UserID == userID && t.FolderID == folderID && keep(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

// ApplyBatch copy-on-write: ทำงานบนสำเนาแล้วค่อยสลับเมื่อทุก mutation ผ่าน
func (ts *TaskStore) ApplyBatch(ctx context.Context, plan *mutation.Plan) error {
	if plan.IsEmpty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}

	next := make(map[uuid.UUID]*models.Task, len(s.tasks))
	for id, t := range s.tasks {
		next[id] = t
	}

	now := s.now()
	for i, m := range plan.Mutations {
		switch m.Op {
		case mutation.OpCreate:
			if _, exists := next[m.Ref.TaskID]; exists {
				return fmt.Errorf("mutation %d (%s %s): document already exists", i, m.Op, m.Ref.Path())
			}
			t := m.Task.Clone()
			t.UpdatedAt = now
			next[m.Ref.TaskID] = t

		case mutation.OpUpdate:
			cur, ok := next[m.Ref.TaskID]
			if !ok || cur.UserID != m.Ref.UserID {
				return fmt.Errorf("mutation %d (%s %s): %w", i, m.Op, m.Ref.Path(), repositories.ErrNotFound)
			}
			t := cur.Clone()
			m.Patch.ApplyTo(t)
			t.UpdatedAt = now
			next[m.Ref.TaskID] = t

		case mutation.OpDelete:
			if cur, ok := next[m.Ref.TaskID]; ok && cur.UserID == m.Ref.UserID {
				delete(next, m.Ref.TaskID)
			}

		default:
			return fmt.Errorf("mutation %d: unknown op %q", i, m.Op)
		}
	}

	s.tasks = next
	s.batches++
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Folders
// ═══════════════════════════════════════════════════════════════════════════════

type FolderStore struct {
	s *Store
}

var _ repositories.FolderRepository = (*FolderStore)(nil)

func (fs *FolderStore) Create(ctx context.Context, folder *models.Folder) error {
	fs.s.mu.Lock()
	defer fs.s.mu.Unlock()

	for _, f := range fs.s.folders {
		if f.UserID == folder.UserID && f.Slug == folder.Slug {
			return fmt.Errorf("folder slug %q already exists", folder.Slug)
		}
	}
	if folder.ID == uuid.Nil {
		folder.ID = uuid.New()
	}
	now := fs.s.now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	folder.UpdatedAt = now
	c := *folder
	fs.s.folders[folder.ID] = &c
	return nil
}

func (fs *FolderStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Folder, error) {
	fs.s.mu.RLock()
	defer fs.s.mu.RUnlock()
	f, ok := fs.s.folders[id]
	if !ok || f.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	c := *f
	return &c, nil
}

func (fs *FolderStore) GetBySlug(ctx context.Context, userID uuid.UUID, slug string) (*models.Folder, error) {
	fs.s.mu.RLock()
	defer fs.s.mu.RUnlock()
	for _, f := range fs.s.folders {
		if f.UserID == userID && f.Slug == slug {
			c := *f
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (fs *FolderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Folder, error) {
	fs.s.mu.RLock()
	defer fs.s.mu.RUnlock()
	var out []*models.Folder
	for _, f := range fs.s.folders {
		if f.UserID == userID {
			c := *f
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (fs *FolderStore) Update(ctx context.Context, folder *models.Folder) error {
	fs.s.mu.Lock()
	defer fs.s.mu.Unlock()
	cur, ok := fs.s.folders[folder.ID]
	if !ok || cur.UserID != folder.UserID {
		return repositories.ErrNotFound
	}
	c := *cur
	c.Name, c.Slug, c.Icon = folder.Name, folder.Slug, folder.Icon
	c.UpdatedAt = fs.s.now()
	fs.s.folders[folder.ID] = &c
	return nil
}

func (fs *FolderStore) DeleteWithTasks(ctx context.Context, userID, id uuid.UUID) error {
	fs.s.mu.Lock()
	defer fs.s.mu.Unlock()
	f, ok := fs.s.folders[id]
	if !ok || f.UserID != userID {
		return repositories.ErrNotFound
	}
	for tid, t := range fs.s.tasks {
		if t.UserID == userID && t.FolderID == id {
			delete(fs.s.tasks, tid)
		}
	}
	delete(fs.s.folders, id)
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// Users
// ═══════════════════════════════════════════════════════════════════════════════

type UserStore struct {
	s *Store
}

var _ repositories.UserRepository = (*UserStore)(nil)

func (us *UserStore) Create(ctx context.Context, user *models.User) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := us.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	c := *user
	us.s.users[user.ID] = &c
	return nil
}

func (us *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return us.find(func(u *models.User) bool { return u.ID == id })
}

func (us *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return us.find(func(u *models.User) bool { return u.Email == email })
}

func (us *UserStore) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return us.find(func(u *models.User) bool { return u.GoogleID == googleID })
}

func (us *UserStore) Update(ctx context.Context, id uuid.UUID, user *models.User) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()
	if _, ok := us.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	c := *user
	c.ID = id
	c.UpdatedAt = us.s.now()
	us.s.users[id] = &c
	return nil
}

func (us *UserStore) find(match func(*models.User) bool) (*models.User, error) {
	us.s.mu.RLock()
	defer us.s.mu.RUnlock()
	for _, u := range us.s.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}
