package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockassist/platform/pkg/utils"
)

// User is a registered account. The authentication core only reads it.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	// AuthorityList is the comma-joined authority set, e.g. "ROLE_USER,ROLE_ADMIN".
	AuthorityList string    `gorm:"column:authorities;type:varchar(512);not null;default:''" json:"-"`
	Profile       *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id to new rows.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Authorities returns the decoded authority set.
func (u *User) Authorities() []string {
	return utils.SplitAuthorities(u.AuthorityList)
}

// Profile holds display data loaded together with the user.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	Nickname  string    `gorm:"type:varchar(64)" json:"nickname"`
	Email     string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "user_profiles"
}

// BeforeCreate assigns an id to new rows.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
