package serviceimpl

import (
	"context"
	"errors"
	"time"

	"nextup-api/domain/ports"
	"nextup-api/pkg/logger"
	"nextup-api/pkg/scheduler"
)

// StuckDetectorConfig การตั้งค่าสำหรับ stuck detector
type StuckDetectorConfig struct {
	CheckInterval time.Duration // default: 30s
	RunTimeout    time.Duration // run ที่ไม่ขยับนานกว่านี้ถือว่า stuck (default: 3m)
}

var errRunTimedOut = errors.New("prioritization timed out, please try again")

// PrioritizationStuckDetector ปลด run ที่ค้าง (เช่น ranking call แขวน) ให้ folder กลับมาใช้ได้
type PrioritizationStuckDetector struct {
	config    StuckDetectorConfig
	tracker   *PrioritizationTracker
	lock      ports.FolderLockPort
	scheduler scheduler.EventScheduler
}

func NewPrioritizationStuckDetector(
	config StuckDetectorConfig,
	tracker *PrioritizationTracker,
	lock ports.FolderLockPort,
	eventScheduler scheduler.EventScheduler,
) *PrioritizationStuckDetector {
	d := &PrioritizationStuckDetector{
		config:    config,
		tracker:   tracker,
		lock:      lock,
		scheduler: eventScheduler,
	}
	if d.config.CheckInterval == 0 {
		d.config.CheckInterval = 30 * time.Second
	}
	if d.config.RunTimeout == 0 {
		d.config.RunTimeout = 3 * time.Minute
	}
	return d
}

// RegisterDetectorJob ลงทะเบียน detector job กับ scheduler
func (d *PrioritizationStuckDetector) RegisterDetectorJob() error {
	expr := "@every " + d.config.CheckInterval.String()
	return d.scheduler.AddJob("prioritization_stuck_detector", expr, func() {
		d.RunDetection(context.Background())
	})
}

// RunDetection คืนจำนวน run ที่ถูก mark เป็น error
func (d *PrioritizationStuckDetector) RunDetection(ctx context.Context) int {
	count := 0
	for _, run := range d.tracker.Stale(d.config.RunTimeout) {
		logger.WarnContext(ctx, "Detected stuck prioritization run",
			"user_id", run.Scope.UserID,
			"folder_id", run.Scope.FolderID,
			"run_id", run.RunID,
			"timeout", d.config.RunTimeout,
		)
		d.tracker.Fail(ctx, run.Scope, run.RunID, errRunTimedOut)
		// ปลดเฉพาะ lock ของ run นี้ ถ้า TTL หมดแล้วมีคนอื่นถืออยู่จะไม่โดน
		if err := d.lock.Unlock(ctx, run.Scope, run.LockToken); err != nil {
			logger.ErrorContext(ctx, "Failed to release folder lock", "folder_id", run.Scope.FolderID, "error", err)
		}
		count++
	}

	if count > 0 {
		logger.InfoContext(ctx, "Stuck detection completed", "total_marked_error", count)
	}
	return count
}
