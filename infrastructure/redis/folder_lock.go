package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
)

// FolderLock per-folder guard ที่ใช้ได้ข้าม API instances
// value ของ key คือ token ของเจ้าของ
type FolderLock struct {
	client *Client
}

var _ ports.FolderLockPort = (*FolderLock)(nil)

func NewFolderLock(client *Client) *FolderLock {
	return &FolderLock{client: client}
}

func folderLockKey(scope mutation.Scope) string {
	return fmt.Sprintf("lock:folder:%s:%s", scope.UserID, scope.FolderID)
}

func (l *FolderLock) TryLock(ctx context.Context, scope mutation.Scope, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.AcquireLock(ctx, folderLockKey(scope), token, ttl)
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (l *FolderLock) Unlock(ctx context.Context, scope mutation.Scope, token string) error {
	released, err := l.client.ReleaseLock(ctx, folderLockKey(scope), token)
	if err != nil {
		return err
	}
	if !released {
		logger.DebugContext(ctx, "Folder lock already expired or taken over", "folder_id", scope.FolderID)
	}
	return nil
}
