package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nextup-api/domain/models"
	"nextup-api/domain/mutation"
	"nextup-api/domain/repositories"
)

// openTestDB ต่อ postgres จริงจาก DATABASE_URL, ไม่มีก็ skip
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedTasks insert ตรงผ่าน gorm และลบทิ้งตอนจบ test
func seedTasks(t *testing.T, db *gorm.DB, userID uuid.UUID, tasks ...*models.Task) {
	t.Helper()
	t.Cleanup(func() {
		db.Where("user_id = ?", userID).Delete(&models.Task{})
	})
	for _, task := range tasks {
		if err := db.Create(task).Error; err != nil {
			t.Fatalf("seed %s: %v", task.Title, err)
		}
	}
}

func ordersByTitle(t *testing.T, repo *TaskRepositoryImpl, userID, folderID uuid.UUID) map[string]int {
	t.Helper()
	tasks, err := repo.ListByFolder(context.Background(), userID, folderID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make(map[string]int, len(tasks))
	for _, task := range tasks {
		out[task.Title] = task.Order
	}
	return out
}

func TestApplyBatchMixedOps(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	user, folder := uuid.New(), uuid.New()

	keep := &models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "keep", Order: 0}
	drop := &models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "drop", Order: 1}
	seedTasks(t, db, user, keep, drop)

	plan := mutation.NewPlan()
	two := 2
	plan.Update(keep, mutation.Patch{Order: &two})
	plan.Delete(drop)
	plan.Create(&models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "new", Order: 0})

	if err := repo.ApplyBatch(ctx, plan); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	got := ordersByTitle(t, repo, user, folder)
	want := map[string]int{"keep": 2, "new": 0}
	if len(got) != len(want) {
		t.Fatalf("tasks = %v, want %v", got, want)
	}
	for title, order := range want {
		if got[title] != order {
			t.Errorf("%s order = %d, want %d", title, got[title], order)
		}
	}
}

func TestApplyBatchRollsBackOnMissingRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	user, folder := uuid.New(), uuid.New()

	a := &models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "a", Order: 0}
	b := &models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "b", Order: 1}
	seedTasks(t, db, user, a, b)

	plan := mutation.NewPlan()
	five := 5
	plan.Update(a, mutation.Patch{Order: &five})
	plan.Delete(b)
	plan.Create(&models.Task{ID: uuid.New(), UserID: user, FolderID: folder, Title: "c", Order: 2})
	// update ที่ไม่เจอแถวไหนเลย ต้องล้มทั้ง transaction
	ghost := &models.Task{ID: uuid.New(), UserID: user, FolderID: folder}
	plan.Update(ghost, mutation.Patch{Order: &five})

	err := repo.ApplyBatch(ctx, plan)
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	got := ordersByTitle(t, repo, user, folder)
	want := map[string]int{"a": 0, "b": 1}
	if len(got) != len(want) {
		t.Fatalf("tasks after rollback = %v, want %v", got, want)
	}
	for title, order := range want {
		if got[title] != order {
			t.Errorf("%s order = %d, want %d", title, got[title], order)
		}
	}
}

func TestApplyBatchScopesUpdatesToOwner(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()
	owner, other, folder := uuid.New(), uuid.New(), uuid.New()

	task := &models.Task{ID: uuid.New(), UserID: owner, FolderID: folder, Title: "mine", Order: 0}
	seedTasks(t, db, owner, task)

	// id ถูกแต่ user ผิด ถือว่าไม่เจอ
	forged := task.Clone()
	forged.UserID = other
	plan := mutation.NewPlan()
	title := "stolen"
	plan.Update(forged, mutation.Patch{Title: &title})

	if err := repo.ApplyBatch(ctx, plan); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if got := ordersByTitle(t, repo, owner, folder); len(got) != 1 || got["mine"] != 0 {
		t.Errorf("tasks = %v", got)
	}
}
