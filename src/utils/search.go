package utils

import (
	"time"

	"pms/src/config"
	"pms/src/db"
	"pms/src/models"
	"pms/src/types"

	"github.com/google/uuid"
)

// SearchTransactions filters the transaction ledger by any combination of
// token code, reference ids and creation window, newest first.
func SearchTransactions(params *types.TransactionSearchQueryParams) ([]models.Transaction, int64, error) {
	page, pageSize := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	db := db.GetDb()
	q := db.Model(&models.Transaction{})
	if params.Token != "" {
		q = q.Where("ticket_code = ?", params.Token)
	}
	if params.ContractorID > 0 {
		q = q.Where("contractor_id = ?", params.ContractorID)
	}
	if params.StoreID > 0 {
		q = q.Where("store_id = ?", params.StoreID)
	}
	if params.PassTypeID > 0 {
		q = q.Where("pass_type_id = ?", params.PassTypeID)
	}
	if params.CreatedAfter != "" {
		after, err := time.Parse(config.DATE_PARSE_FORMAT, params.CreatedAfter)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("created_at >= ?", after)
	}
	if params.CreatedBefore != "" {
		before, err := time.Parse(config.DATE_PARSE_FORMAT, params.CreatedBefore)
		if err != nil {
			return nil, 0, err
		}
		q = q.Where("created_at < ?", before.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var transactions []models.Transaction
	err := q.
		Preload("Contractor").
		Preload("Store").
		Preload("PassType").
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&transactions).
		Error
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func GetTransaction(id uuid.UUID) (*models.Transaction, error) {
	db := db.GetDb()
	var txn models.Transaction
	err := db.
		Preload("Contractor").
		Preload("Store").
		Preload("PassType").
		Preload("Pass").
		Where("id = ?", id).
		First(&txn).
		Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListPasses pages the issued passes, newest first, optionally narrowed to
// one status.
func ListPasses(params *types.ListPassesQueryParams) ([]models.Pass, int64, error) {
	page, pageSize := params.Page, params.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	db := db.GetDb()
	q := db.Model(&models.Pass{})
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.ContractorID > 0 {
		q = q.Where("contractor_id = ?", params.ContractorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var passes []models.Pass
	err := q.
		Preload("Contractor").
		Preload("Store").
		Preload("PassType").
		Order("created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&passes).
		Error
	if err != nil {
		return nil, 0, err
	}
	return passes, total, nil
}

func GetPass(id uint) (*models.Pass, error) {
	db := db.GetDb()
	var pass models.Pass
	err := db.
		Preload("Contractor").
		Preload("Store").
		Preload("PassType").
		Where(&models.Pass{ID: id}).
		First(&pass).
		Error
	if err != nil {
		return nil, err
	}
	return &pass, nil
}
