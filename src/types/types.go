package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type TokenStatus = string

const (
	TOKEN_OPEN       TokenStatus = "open"
	TOKEN_IN_PAYMENT TokenStatus = "in_payment"
	TOKEN_CLOSED     TokenStatus = "closed"
)

type TransactionStatus = string

const (
	TRANSACTION_PENDING TransactionStatus = "pending"
	TRANSACTION_PAID    TransactionStatus = "paid"
)

type PassStatus = string

const (
	PASS_ACTIVE PassStatus = "active"
	PASS_CLOSED PassStatus = "closed"
)

const (
	ROLE_CUSTOMER = "customer"
	ROLE_OPERATOR = "operator"
	ROLE_ADMIN    = "admin"
)

type IssueTokenQueryParams struct {
	Type string `form:"type" binding:"omitempty,alpha,max=4"`
}

type ListTokensQueryParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

type CloseTokenRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type OpenTransactionRequestBody struct {
	TicketCode   string `json:"ticket_code" binding:"required"`
	ContractorID uint   `json:"contractor" binding:"required"`
	StoreID      uint   `json:"store" binding:"required"`
	PassTypeID   uint   `json:"pass_type" binding:"required"`
	StartDate    string `json:"start_date" binding:"required,passdate" time_format:"2006-01-02"`
	EndDate      string `json:"end_date" binding:"required,passdate,gtdate=StartDate" time_format:"2006-01-02"`
	Position     string `json:"position,omitempty"`
}

type UpdateTransactionRequestBody struct {
	ContractorID uint   `json:"contractor" binding:"required"`
	StoreID      uint   `json:"store" binding:"required"`
	PassTypeID   uint   `json:"pass_type" binding:"required"`
	StartDate    string `json:"start_date" binding:"required,passdate" time_format:"2006-01-02"`
	EndDate      string `json:"end_date" binding:"required,passdate,gtdate=StartDate" time_format:"2006-01-02"`
	Position     string `json:"position,omitempty"`
}

type TransactionSearchQueryParams struct {
	Token         string `form:"token"`
	ContractorID  uint   `form:"contractor"`
	StoreID       uint   `form:"store"`
	PassTypeID    uint   `form:"passType"`
	CreatedAfter  string `form:"createdAfter" binding:"omitempty,passdate"`
	CreatedBefore string `form:"createdBefore" binding:"omitempty,passdate"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

type ListPassesQueryParams struct {
	Status       string `form:"status" binding:"omitempty,oneof=active closed"`
	ContractorID uint   `form:"contractor"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" binding:"omitempty,min=1,max=200"`
}

type ClosePassRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type TransactionURIParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type RegisterUserRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role,omitempty" binding:"omitempty,oneof=customer operator admin"`
}

type LoginUserRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
