package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/infrastructure/memstore"
)

var fixedNow = time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memstore.Store
	lock     *memstore.FolderLock
	executor *CommitExecutor
	user     uuid.UUID
	folder   *models.Folder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{
		store:    store,
		lock:     memstore.NewFolderLock(),
		executor: NewCommitExecutor(store.Tasks()),
		user:     uuid.New(),
	}
	f.folder = f.addFolder(t, "Inbox")
	return f
}

func (f *fixture) addFolder(t *testing.T, name string) *models.Folder {
	t.Helper()
	folder := &models.Folder{ID: uuid.New(), UserID: f.user, Name: name, Slug: name}
	if err := f.store.Folders().Create(context.Background(), folder); err != nil {
		t.Fatalf("create folder: %v", err)
	}
	return folder
}

// seed ใส่ incomplete tasks ตามลำดับ order 0..n-1
func (f *fixture) seed(titles ...string) []*models.Task {
	tasks := make([]*models.Task, len(titles))
	for i, title := range titles {
		tasks[i] = &models.Task{
			ID:        uuid.New(),
			UserID:    f.user,
			FolderID:  f.folder.ID,
			Title:     title,
			Order:     i,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Second),
		}
	}
	f.store.Seed(tasks...)
	return tasks
}

func (f *fixture) incompleteTitles(t *testing.T) []string {
	t.Helper()
	tasks, err := f.store.Tasks().ListIncomplete(context.Background(), f.user, f.folder.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func (f *fixture) orders(t *testing.T) map[string]int {
	t.Helper()
	tasks, _ := f.store.Tasks().ListByFolder(context.Background(), f.user, f.folder.ID)
	out := make(map[string]int, len(tasks))
	for _, task := range tasks {
		out[task.Title] = task.Order
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func scopeOf(f *fixture) mutation.Scope {
	return mutation.Scope{UserID: f.user, FolderID: f.folder.ID}
}
