// Package ordering maintains the integer order key of incomplete tasks
// within a folder. Nothing here performs I/O.
package ordering

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"nextup-api/domain/models"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// Assignment order ใหม่ของ task หนึ่งตัว
type Assignment struct {
	Task  *models.Task
	Order int
}

// Changed reports whether the assignment differs from the stored order.
func (a Assignment) Changed() bool {
	return a.Task.Order != a.Order
}

// AssignSequential gives every task its index in seq as its order.
func AssignSequential(seq []*models.Task) []Assignment {
	out := make([]Assignment, len(seq))
	for i, t := range seq {
		out[i] = Assignment{Task: t, Order: i}
	}
	return out
}

// InsertAfter returns the order for a task inserted right after seq[after]
// and the +1 shift for every task behind it. Tasks up to and including
// seq[after] keep their order.
func InsertAfter(seq []*models.Task, after int) (int, []Assignment, error) {
	if after < 0 || after >= len(seq) {
		return 0, nil, ErrIndexOutOfRange
	}
	newOrder := seq[after].Order + 1
	shifts := make([]Assignment, 0, len(seq)-after-1)
	for _, t := range seq[after+1:] {
		shifts = append(shifts, Assignment{Task: t, Order: t.Order + 1})
	}
	return newOrder, shifts, nil
}

// Move ย้าย element จาก from ไป to (array move) คืน slice ใหม่
func Move(seq []*models.Task, from, to int) ([]*models.Task, error) {
	if from < 0 || from >= len(seq) || to < 0 || to >= len(seq) {
		return nil, ErrIndexOutOfRange
	}
	out := make([]*models.Task, 0, len(seq))
	out = append(out, seq[:from]...)
	out = append(out, seq[from+1:]...)

	moved := seq[from]
	out = append(out, nil)
	copy(out[to+1:], out[to:])
	out[to] = moved
	return out, nil
}

// OnlyChanged filters assignments down to the ones that need a write.
func OnlyChanged(assignments []Assignment) []Assignment {
	var out []Assignment
	for _, a := range assignments {
		if a.Changed() {
			out = append(out, a)
		}
	}
	return out
}

// SortByOrder stable sort ตาม order จากน้อยไปมาก
func SortByOrder(tasks []*models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}

// IndexOf returns the position of id in seq, or -1.
func IndexOf(seq []*models.Task, id uuid.UUID) int {
	for i, t := range seq {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// NextOrder returns max(order)+1, or 0 for an empty sequence.
func NextOrder(seq []*models.Task) int {
	if len(seq) == 0 {
		return 0
	}
	max := seq[0].Order
	for _, t := range seq[1:] {
		if t.Order > max {
			max = t.Order
		}
	}
	return max + 1
}

// Partition splits a folder listing into incomplete (sorted by order) and completed tasks.
func Partition(tasks []*models.Task) (incomplete, completed []*models.Task) {
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			incomplete = append(incomplete, t)
		}
	}
	SortByOrder(incomplete)
	return incomplete, completed
}

// HasDuplicateOrders ตรวจหา order ซ้ำใน sequence
func HasDuplicateOrders(seq []*models.Task) bool {
	seen := make(map[int]bool, len(seq))
	for _, t := range seq {
		if seen[t.Order] {
			return true
		}
		seen[t.Order] = true
	}
	return false
}
