package models

import (
	"time"

	"pms/src/types"

	"github.com/google/uuid"
)

type Transaction struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	TicketCode   string                  `gorm:"index" json:"ticket_code"`
	TicketType   string                  `json:"ticket_type,omitempty"`
	OperatorID   uint                    `json:"operator_id,omitempty"`
	Status       types.TransactionStatus `gorm:"default:'pending'" json:"status"`
	PaymentDate  *time.Time              `json:"payment_date,omitempty"`
	ContractorID uint                    `json:"contractor_id"`
	StoreID      uint                    `json:"store_id"`
	PassTypeID   uint                    `json:"pass_type_id"`
	StartDate    time.Time               `gorm:"type:date" json:"start_date"`
	EndDate      time.Time               `gorm:"type:date" json:"end_date"`
	Position     string                  `json:"position,omitempty"`
	// Amount is copied from the pass type at creation and re-derived on
	// pending edits; it never changes after payment.
	Amount float64 `json:"amount"`
	PassID *uint   `json:"pass_id,omitempty"`

	Contractor *Contractor `gorm:"foreignKey:contractor_id" json:"contractor,omitempty"`
	Store      *Store      `gorm:"foreignKey:store_id" json:"store,omitempty"`
	PassType   *PassType   `gorm:"foreignKey:pass_type_id" json:"pass_type,omitempty"`
	Pass       *Pass       `gorm:"foreignKey:pass_id" json:"pass,omitempty"`

	types.Timestamps
}
