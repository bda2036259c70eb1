package repositories

import "errors"

// ErrNotFound record ไม่มีอยู่ (หรือไม่ใช่ของ user นี้)
var ErrNotFound = errors.New("record not found")
