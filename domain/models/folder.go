package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder กลุ่มของ tasks ของ user หนึ่งคน (ไม่มี ordering ระหว่าง folders)
type Folder struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_folders_user_slug,priority:1"`
	Name      string    `gorm:"size:100;not null"`
	Slug      string    `gorm:"size:120;not null;uniqueIndex:idx_folders_user_slug,priority:2"`
	Icon      string    `gorm:"size:50"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Folder) TableName() string {
	return "folders"
}
