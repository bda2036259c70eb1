package services

import (
	"context"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/ports"
)

type PrioritizationStatus string

const (
	StatusPrioritized         PrioritizationStatus = "prioritized"
	StatusNothingToPrioritize PrioritizationStatus = "nothing_to_prioritize"
)

// PrioritizedTask task ในลำดับใหม่ พร้อม annotation จาก ranking (ถ้ามี)
type PrioritizedTask struct {
	Task             *models.Task
	Priority         models.Priority
	EstimatedMinutes *float64
}

type PrioritizationResult struct {
	Status PrioritizationStatus
	Mode   ports.RunPhase // RunLocalSort | RunRemoteRank
	Tasks  []PrioritizedTask
	// Updated จำนวน document ที่ถูกเขียน
	Updated int
}

type PrioritizationService interface {
	Prioritize(ctx context.Context, userID, folderID uuid.UUID) (*PrioritizationResult, error)
	GetRunState(ctx context.Context, userID, folderID uuid.UUID) (*ports.RunState, error)
}
