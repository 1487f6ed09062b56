package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account.
type User struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"`
	ImageURL  string `gorm:"size:512" json:"image_url"`
	CreatedAt time.Time

	Workgroups []UserWorkgroup `gorm:"foreignKey:UserID"`
}

// Workgroup is a named group of users sharing schema documents.
// The creator is implicitly full-admin regardless of the stored edge.
type Workgroup struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	GroupName string `gorm:"size:255;not null" json:"group_name"`
	CreatorID string `gorm:"type:char(36);not null;index" json:"creator_id"`
	Private   bool   `gorm:"not null;default:false" json:"private"`
	CreatedAt time.Time

	Members []UserWorkgroup `gorm:"foreignKey:GroupID"`
}

// UserWorkgroup is the permission edge between a user and a workgroup.
type UserWorkgroup struct {
	UserID      string `gorm:"type:char(36);primaryKey" json:"user_id"`
	GroupID     string `gorm:"type:char(36);primaryKey" json:"group_id"`
	CreateRight bool   `gorm:"not null;default:false" json:"create_right"`
	UpdateRight bool   `gorm:"not null;default:false" json:"update_right"`
	DeleteRight bool   `gorm:"not null;default:false" json:"delete_right"`

	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Workgroup Workgroup `gorm:"foreignKey:GroupID" json:"-"`
}

// BeforeCreate assigns a uuid primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate assigns a uuid primary key
func (w *Workgroup) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Workgroup
func (Workgroup) TableName() string {
	return "workgroups"
}

// TableName overrides the table name for UserWorkgroup
func (UserWorkgroup) TableName() string {
	return "users_workgroups"
}
