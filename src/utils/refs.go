package utils

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pms/src/db"
	"pms/src/lib"
	"pms/src/models"
	"pms/src/types"

	"gorm.io/gorm"
)

const passTypeCacheKey = "passtypes:active"
const passTypeCacheTTL = 10 * time.Minute

func ensureContractor(tx *gorm.DB, id uint) error {
	var contractor models.Contractor
	err := tx.Where("id = ? AND active = ?", id, true).First(&contractor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.ReferenceNotFoundError{Entity: "contractor"}
	}
	return err
}

func ensureStore(tx *gorm.DB, id uint) error {
	var store models.Store
	err := tx.Where("id = ? AND active = ?", id, true).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.ReferenceNotFoundError{Entity: "store"}
	}
	return err
}

// GetPassType resolves an active pass type inside the caller's transaction.
// The amount copied onto a transaction always reflects the row as committed
// right now, never a cached price.
func GetPassType(tx *gorm.DB, id uint) (*models.PassType, error) {
	var passType models.PassType
	err := tx.Where("id = ? AND active = ?", id, true).First(&passType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &types.ReferenceNotFoundError{Entity: "pass type"}
	}
	if err != nil {
		return nil, err
	}
	return &passType, nil
}

// ListPassTypes serves the active price list through a short-lived cache.
// Read surface only; pricing decisions go through GetPassType.
func ListPassTypes() ([]models.PassType, error) {
	bg := context.Background()
	rd := lib.GetRedisClient()
	if rd != nil {
		if cached, err := rd.Get(bg, passTypeCacheKey).Result(); err == nil && cached != "" {
			var passTypes []models.PassType
			if err := json.Unmarshal([]byte(cached), &passTypes); err == nil {
				return passTypes, nil
			}
		}
	}

	var passTypes []models.PassType
	db := db.GetDb()
	if err := db.
		Where("active = ?", true).
		Order("cost asc").
		Find(&passTypes).
		Error; err != nil {
		return nil, err
	}
	if rd != nil {
		if raw, err := json.Marshal(&passTypes); err == nil {
			rd.SetEx(bg, passTypeCacheKey, string(raw), passTypeCacheTTL)
		}
	}
	return passTypes, nil
}
