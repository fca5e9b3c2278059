package models

import "pms/src/types"

type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Name         string `json:"name,omitempty"`
	Email        string `gorm:"uniqueIndex" json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:'customer'" json:"role,omitempty"`
	UID          string `gorm:"size:64" json:"uid,omitempty"`

	Tickets []Ticket `gorm:"foreignKey:owner_id" json:"tickets,omitempty"`

	types.Timestamps
}
