package models

import (
	"time"

	"github.com/google/uuid"
)

// User เจ้าของ folders และ tasks
// การยืนยันตัวตนทำผ่าน Google (ไม่มี password)
type User struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GoogleID    string    `gorm:"size:255;uniqueIndex;not null"`
	Email       string    `gorm:"uniqueIndex;not null"`
	DisplayName string    `gorm:"size:255"`
	Avatar      string
	Role        string `gorm:"default:'user'"` // user, admin
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (User) TableName() string {
	return "users"
}

