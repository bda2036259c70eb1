package serviceimpl

import (
	"context"
	"time"

	"nextup-api/domain/mutation"
	"nextup-api/domain/ports"
	"nextup-api/domain/services"
	"nextup-api/pkg/logger"
)

// CommitExecutor ส่ง mutation plan ไปที่ storage เป็น batch เดียว
// ไม่ถือ cache ใดๆ UI อ่านสถานะใหม่จาก live feed เอง
type CommitExecutor struct {
	writer ports.BatchWriterPort
}

func NewCommitExecutor(writer ports.BatchWriterPort) *CommitExecutor {
	return &CommitExecutor{writer: writer}
}

type commitOptions struct {
	op        string
	floor     time.Duration
	indicator ports.SavingIndicatorPort
	scope     mutation.Scope
}

type CommitOption func(*commitOptions)

// WithLatencyFloor commit คืนค่าไม่เร็วกว่า d (0 = ไม่รอ)
func WithLatencyFloor(d time.Duration) CommitOption {
	return func(o *commitOptions) { o.floor = d }
}

// WithIndicator ส่ง saving true/false ให้ indicator ของ folder ระหว่าง commit
func WithIndicator(ind ports.SavingIndicatorPort, scope mutation.Scope) CommitOption {
	return func(o *commitOptions) {
		o.indicator = ind
		o.scope = scope
	}
}

// WithOp ชื่อ action สำหรับ log และ CommitError
func WithOp(op string) CommitOption {
	return func(o *commitOptions) { o.op = op }
}

// Commit applies the plan atomically. An empty plan returns immediately
// without touching storage or the indicator. Any failure is returned as
// *services.CommitError.
func (e *CommitExecutor) Commit(ctx context.Context, plan *mutation.Plan, opts ...CommitOption) error {
	if plan.IsEmpty() {
		return nil
	}

	o := commitOptions{op: "commit"}
	for _, opt := range opts {
		opt(&o)
	}

	if o.indicator != nil {
		o.indicator.SetSaving(ctx, o.scope, true)
		defer o.indicator.SetSaving(context.WithoutCancel(ctx), o.scope, false)
	}

	var floor <-chan time.Time
	if o.floor > 0 {
		timer := time.NewTimer(o.floor)
		defer timer.Stop()
		floor = timer.C
	}

	start := time.Now()
	err := e.writer.ApplyBatch(ctx, plan)
	took := time.Since(start)

	if floor != nil {
		select {
		case <-floor:
		case <-ctx.Done():
		}
	}

	if err != nil {
		logger.WarnContext(ctx, "Batch commit failed",
			"op", o.op,
			"mutations", plan.Len(),
			"took", took,
			"error", err,
		)
		return &services.CommitError{Op: o.op, Err: err}
	}

	logger.DebugContext(ctx, "Batch committed",
		"op", o.op,
		"creates", plan.Count(mutation.OpCreate),
		"updates", plan.Count(mutation.OpUpdate),
		"deletes", plan.Count(mutation.OpDelete),
		"took", took,
	)
	return nil
}
