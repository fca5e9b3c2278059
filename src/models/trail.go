package models

import (
	"pms/src/types"

	"github.com/google/uuid"
)

// TrailLog is the write-only audit sink; nothing in this service reads it
// back.
type TrailLog struct {
	ID        uuid.UUID   `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Type      string      `json:"type"`
	Initiator uint        `json:"initiator"`
	Group     string      `json:"group"`
	EntityID  string      `json:"entity_id,omitempty"`
	Detail    types.JSONB `gorm:"type:jsonb" json:"detail,omitempty"`

	types.Timestamps
}
