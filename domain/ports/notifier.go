package ports

import (
	"context"

	"nextup-api/domain/mutation"
)

// SavingIndicatorPort รับสัญญาณ busy/idle ของ folder ที่กำลัง commit
// ส่งผ่าน option ของ executor แทนการใช้ global state
type SavingIndicatorPort interface {
	SetSaving(ctx context.Context, scope mutation.Scope, saving bool)
}
