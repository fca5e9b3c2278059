package models

import "pms/src/types"

// Reference entities are read-only from the workflow's point of view; the
// back-office CRUD that maintains them lives elsewhere.

type Contractor struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `json:"name"`
	TaxID  string `gorm:"size:32" json:"tax_id,omitempty"`
	Active bool   `gorm:"default:true" json:"active"`

	types.Timestamps
}

type Store struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name"`
	Building string `json:"building,omitempty"`
	Floor    string `json:"floor,omitempty"`
	Line     string `json:"line,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Active   bool   `gorm:"default:true" json:"active"`

	types.Timestamps
}

type PassType struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Name         string  `json:"name"`
	Cost         float64 `json:"cost"`
	DurationDays uint    `json:"duration_days,omitempty"`
	Active       bool    `gorm:"default:true" json:"active"`

	types.Timestamps
}
