package team

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Team struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_teams_name"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_teams_deleted_at"`
}

type Employee struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamID   *uuid.UUID `gorm:"type:uuid;index:idx_employees_team"`
	FullName string     `gorm:"type:varchar(150);not null"`
	Email    string     `gorm:"type:varchar(150);not null;uniqueIndex:idx_employees_email"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`

	Team *Team `gorm:"foreignKey:TeamID"`
}
