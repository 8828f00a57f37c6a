package models

import "time"

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RestaurantID     string     `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	Name             string     `gorm:"type:varchar(255); not null" json:"name"`
	Email            string     `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password         string     `gorm:"type:varchar(255); not null" json:"-"`
	Role             string     `gorm:"type:varchar(50); not null" json:"role"`
	ResetToken       *string    `gorm:"type:varchar(255)" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
