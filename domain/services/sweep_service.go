package services

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

// SweepService ลบ completed tasks ที่เก่ากว่า retention
type SweepService interface {
	// SweepFolder โหลด completed tasks แล้วลบใน batch เดียว คืนจำนวนที่ลบ
	SweepFolder(ctx context.Context, userID, folderID uuid.UUID) (int, error)
	// SweepLoaded ใช้ snapshot ที่โหลดมาแล้ว ทำงานเบื้องหลัง error แค่ log
	// คืนเฉพาะ tasks ที่ไม่ถูกลบ
	SweepLoaded(ctx context.Context, userID, folderID uuid.UUID, completed []*models.Task) []*models.Task
}
