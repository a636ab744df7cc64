package services

import (
	"github.com/pairline/pairline/pkg/internal/database"
	"github.com/pairline/pairline/pkg/internal/models"
)

func GetAccount(id string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, err
	} else {
		return account, nil
	}
}

func ListAccount(take int, offset int) ([]models.Account, error) {
	if take > 100 {
		take = 100
	}

	var accounts []models.Account
	if err := database.C.
		Limit(take).Offset(offset).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return accounts, err
	} else {
		return accounts, nil
	}
}
