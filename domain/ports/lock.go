package ports

import (
	"context"
	"time"

	"nextup-api/domain/mutation"
)

// FolderLockPort กัน trigger ซ้อนกันของ user คนเดียวบน folder เดียว
// ไม่ใช่ collaboration lock
type FolderLockPort interface {
	// TryLock คืน token ของเจ้าของ lock, ok=false ถ้ามีคนถืออยู่แล้ว
	TryLock(ctx context.Context, scope mutation.Scope, ttl time.Duration) (token string, ok bool, err error)
	// Unlock ปล่อยเฉพาะเมื่อ lock ยังเป็นของ token นี้
	Unlock(ctx context.Context, scope mutation.Scope, token string) error
}
