package models

import (
	"time"

	"pms/src/types"

	"github.com/google/uuid"
)

type Pass struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	UniqueID string `gorm:"size:64;uniqueIndex" json:"unique_id"`

	ContractorID    uint             `json:"contractor_id"`
	StoreID         uint             `json:"store_id"`
	PassTypeID      uint             `json:"pass_type_id"`
	StartDate       time.Time        `gorm:"type:date" json:"start_date"`
	EndDate         time.Time        `gorm:"type:date" json:"end_date"`
	TransactionDate time.Time        `json:"transaction_date"`
	Position        string           `json:"position,omitempty"`
	Cost            float64          `json:"cost"`
	Status          types.PassStatus `gorm:"default:'active'" json:"status"`
	CloseReason     *string          `json:"close_reason,omitempty"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	TransactionID   uuid.UUID        `gorm:"type:uuid;index" json:"transaction_id"`

	Contractor *Contractor `gorm:"foreignKey:contractor_id" json:"contractor,omitempty"`
	Store      *Store      `gorm:"foreignKey:store_id" json:"store,omitempty"`
	PassType   *PassType   `gorm:"foreignKey:pass_type_id" json:"pass_type,omitempty"`

	types.Timestamps
}
