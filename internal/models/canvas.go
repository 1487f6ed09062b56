package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatabaseGroup collects the canvases of a workgroup.
type DatabaseGroup struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	WorkgroupID string `gorm:"type:char(36);not null;index" json:"workgroup_id"`

	Workgroup Workgroup  `gorm:"foreignKey:WorkgroupID" json:"-"`
	Databases []Database `gorm:"foreignKey:GroupID" json:"databases,omitempty"`
}

// Database is one canvas row; Structure holds the JSON schema document.
type Database struct {
	ID        string `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	GroupID   string `gorm:"type:char(36);not null;index" json:"group_id"`
	Structure JSON   `gorm:"type:json" json:"structure"`
	IsPublic  bool   `gorm:"not null;default:false" json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Group DatabaseGroup `gorm:"foreignKey:GroupID" json:"-"`
}

// BeforeCreate assigns a uuid primary key
func (g *DatabaseGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key
func (d *Database) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for DatabaseGroup
func (DatabaseGroup) TableName() string {
	return "databases_groups"
}

// TableName overrides the table name for Database
func (Database) TableName() string {
	return "databases"
}
