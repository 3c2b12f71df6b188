package dbschema

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel is the shared column set for every entity.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
