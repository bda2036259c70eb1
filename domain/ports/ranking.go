package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

var (
	// ErrRankingUnavailable ยังไม่ได้ตั้งค่า ranking collaborator
	ErrRankingUnavailable = errors.New("ranking collaborator unavailable")
	// ErrMalformedRanking response ไม่ตรง contract
	ErrMalformedRanking = errors.New("malformed ranking response")
)

type RankingTask struct {
	ID       uuid.UUID
	Title    string
	Deadline *time.Time
	Priority *models.Priority
}

type RankingRequest struct {
	Tasks []RankingTask
}

// RankedTask annotation ที่ collaborator ให้มา (ผ่าน validation แล้ว)
type RankedTask struct {
	ID               uuid.UUID
	Title            string
	EstimatedMinutes float64
	Priority         models.Priority
}

// RankingResult ลำดับของ Tasks คือ priority order ใหม่
type RankingResult struct {
	Tasks []RankedTask
}

// RankingPort single request/response ranking function
type RankingPort interface {
	Rank(ctx context.Context, req *RankingRequest) (*RankingResult, error)
}
