package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Password holds the keyed hash, never the plaintext.
type User struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	FirstName string    `json:"firstName" db:"first_name" gorm:"type:varchar(100);not null"`
	LastName  string    `json:"lastName" db:"last_name" gorm:"type:varchar(100);not null;index:idx_users_last_name"`
	Email     string    `json:"email" db:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	Password  string    `json:"-" db:"password" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Sanitize returns a copy of the user without the password hash.
func (u User) Sanitize() User {
	u.Password = ""
	return u
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
