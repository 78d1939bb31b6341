package db

import (
	"github.com/terraincognita07/cyclelog/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoogleTokenRepository struct {
	database *gorm.DB
}

func NewGoogleTokenRepository(database *gorm.DB) *GoogleTokenRepository {
	return &GoogleTokenRepository{database: database}
}

func (repo *GoogleTokenRepository) FindByUser(userID uint) (models.GoogleToken, bool, error) {
	token := models.GoogleToken{}
	result := repo.database.Where("user_id = ?", userID).Limit(1).Find(&token)
	if result.Error != nil {
		return models.GoogleToken{}, false, result.Error
	}
	return token, result.RowsAffected > 0, nil
}

// Save inserts or replaces the token of token.UserID.
func (repo *GoogleTokenRepository) Save(token *models.GoogleToken) error {
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "updated_at"}),
	}).Create(token).Error
}

func (repo *GoogleTokenRepository) Delete(userID uint) error {
	return repo.database.Where("user_id = ?", userID).Delete(&models.GoogleToken{}).Error
}
