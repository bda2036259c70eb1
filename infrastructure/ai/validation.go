package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"nextup-api/domain/models"
	"nextup-api/domain/ports"
)

// RankingValidationError response จาก model ไม่ตรง schema
type RankingValidationError struct {
	Index   int // -1 = ทั้ง document
	Field   string
	Message string
}

func (e *RankingValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("ranking response: %s", e.Message)
	}
	return fmt.Sprintf("ranking response item %d: %s %s", e.Index, e.Field, e.Message)
}

func (e *RankingValidationError) Unwrap() error {
	return ports.ErrMalformedRanking
}

type rankedItem struct {
	ID                      *string  `json:"id"`
	Title                   string   `json:"title"`
	EstimatedTimeToComplete *float64 `json:"estimatedTimeToComplete"`
	Priority                *string  `json:"priority"`
	Deadline                string   `json:"deadline,omitempty"`
}

// DecodeRanking parse และ validate JSON array ที่ model ส่งกลับมา
// ตรวจแค่รูปแบบ ส่วน id ตรงกับ folder หรือไม่เป็นหน้าที่ของ service
func DecodeRanking(raw string) (*ports.RankingResult, error) {
	raw = stripFence(raw)

	var items []rankedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &RankingValidationError{Index: -1, Message: "not a JSON array of tasks: " + err.Error()}
	}
	if len(items) == 0 {
		return nil, &RankingValidationError{Index: -1, Message: "empty array"}
	}

	result := &ports.RankingResult{Tasks: make([]ports.RankedTask, len(items))}
	for i, item := range items {
		if item.ID == nil {
			return nil, &RankingValidationError{Index: i, Field: "id", Message: "is missing"}
		}
		id, err := uuid.Parse(*item.ID)
		if err != nil {
			return nil, &RankingValidationError{Index: i, Field: "id", Message: fmt.Sprintf("%q is not a task id", *item.ID)}
		}
		if item.EstimatedTimeToComplete == nil {
			return nil, &RankingValidationError{Index: i, Field: "estimatedTimeToComplete", Message: "is missing"}
		}
		if *item.EstimatedTimeToComplete < 0 {
			return nil, &RankingValidationError{Index: i, Field: "estimatedTimeToComplete", Message: "is negative"}
		}
		if item.Priority == nil {
			return nil, &RankingValidationError{Index: i, Field: "priority", Message: "is missing"}
		}
		priority := models.Priority(*item.Priority)
		if !priority.IsValid() {
			return nil, &RankingValidationError{Index: i, Field: "priority", Message: fmt.Sprintf("%q is not High, Medium or Low", *item.Priority)}
		}

		result.Tasks[i] = ports.RankedTask{
			ID:               id,
			Title:            item.Title,
			EstimatedMinutes: *item.EstimatedTimeToComplete,
			Priority:         priority,
		}
	}
	return result, nil
}

// บาง model ห่อ JSON ด้วย ```json แม้ตั้ง MIME type แล้ว
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
