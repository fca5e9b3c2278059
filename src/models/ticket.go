package models

import (
	"fmt"
	"time"

	"pms/src/types"
)

// Ticket is a queue position handed out at the front desk. The numbering is
// kept structured (seq_date, token_type, number); Code is the display form
// composed once at allocation.
type Ticket struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"size:16" json:"code"`
	TokenType string    `gorm:"size:4;uniqueIndex:idx_tickets_day_type_number,priority:2" json:"type"`
	Number    uint      `gorm:"uniqueIndex:idx_tickets_day_type_number,priority:3" json:"number"`
	SeqDate   time.Time `gorm:"type:date;uniqueIndex:idx_tickets_day_type_number,priority:1" json:"-"`
	OwnerID   uint      `gorm:"index" json:"owner_id,omitempty"`
	Status    string    `gorm:"default:'open'" json:"status,omitempty"`

	Owner *User `gorm:"foreignKey:owner_id" json:"owner,omitempty"`

	types.Timestamps
}

// TicketSequence backs the per-(day, type) allocator. Rows are only ever
// touched through the ON CONFLICT upsert in the workflow.
type TicketSequence struct {
	SeqDate    time.Time `gorm:"type:date;primaryKey"`
	TokenType  string    `gorm:"size:4;primaryKey"`
	NextNumber uint
}

func FormatTokenCode(tokenType string, number uint) string {
	return fmt.Sprintf("%s%d", tokenType, number)
}
