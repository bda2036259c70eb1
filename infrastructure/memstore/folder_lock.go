package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
)

type heldLock struct {
	token  string
	expiry time.Time
}

// FolderLock in-process lock ใช้ตอนไม่มี Redis
type FolderLock struct {
	mu   sync.Mutex
	held map[mutation.Scope]heldLock
	now  func() time.Time
}

var _ ports.FolderLockPort = (*FolderLock)(nil)

func NewFolderLock() *FolderLock {
	return &FolderLock{held: make(map[mutation.Scope]heldLock), now: time.Now}
}

func (l *FolderLock) TryLock(ctx context.Context, scope mutation.Scope, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.held[scope]; ok && now.Before(h.expiry) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[scope] = heldLock{token: token, expiry: now.Add(ttl)}
	return token, true, nil
}

// Unlock ของ token เก่า (หมดอายุหรือถูกปลดไปแล้ว) ไม่มีผล
func (l *FolderLock) Unlock(ctx context.Context, scope mutation.Scope, token string) error {
	l.mu.Lock()
	if h, ok := l.held[scope]; ok && h.token == token {
		delete(l.held, scope)
	}
	l.mu.Unlock()
	return nil
}
