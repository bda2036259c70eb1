package ports

import (
	"context"

	"nextup-api/domain/mutation"
)

// BatchWriterPort คือ storage collaborator ฝั่งเขียน
// ApplyBatch ต้อง atomic: สำเร็จทั้ง plan หรือไม่มีอะไรเปลี่ยนเลย
type BatchWriterPort interface {
	ApplyBatch(ctx context.Context, plan *mutation.Plan) error
}
