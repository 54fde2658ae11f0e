package models

import "time"

// Contact is a single address-book entry owned by a user.
type Contact struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"-" gorm:"index;not null"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Birthday  time.Time `json:"birthday" gorm:"type:date"`
	ExtraInfo *string   `json:"extra_info"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for the Contact model.
func (Contact) TableName() string {
	return "contacts"
}
