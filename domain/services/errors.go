package services

import (
	"errors"
	"fmt"

	"nextup-api/domain/planner"
	"nextup-api/domain/ports"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrUserNotFound   = errors.New("user not found")

	// ErrFolderBusy มี prioritize/reorder ของ folder นี้กำลังทำงานอยู่
	ErrFolderBusy = errors.New("folder is busy, try again when the current action finishes")

	// ErrRunSuperseded run ถูก stuck detector ปลดไปแล้ว ผลของมันจะไม่ถูกเขียน
	ErrRunSuperseded = errors.New("prioritization run timed out before it could save")

	ErrTaskNotInSequence  = planner.ErrTaskNotInSequence
	ErrRankingUnavailable = ports.ErrRankingUnavailable
	ErrMalformedRanking   = ports.ErrMalformedRanking

	ErrAccountDisabled = errors.New("account is disabled")
	ErrInvalidIDToken  = errors.New("invalid identity token")
)

// CommitError batch commit ล้มเหลว ไม่มีอะไรถูกเขียน
type CommitError struct {
	Op  string // toggle, create_below, reorder, prioritize, ...
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("could not save changes (%s): %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// Message ข้อความสำหรับแสดงผู้ใช้
func (e *CommitError) Message() string {
	return "Your changes could not be saved. Nothing was changed, please try again."
}
