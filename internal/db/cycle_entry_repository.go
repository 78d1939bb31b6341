package db

import (
	"fmt"
	"time"

	"github.com/terraincognita07/cyclelog/internal/models"
	"gorm.io/gorm"
)

type CycleEntryRepository struct {
	database *gorm.DB
}

func NewCycleEntryRepository(database *gorm.DB) *CycleEntryRepository {
	return &CycleEntryRepository{database: database}
}

// ListByUser returns every entry of the user, newest date first.
func (repo *CycleEntryRepository) ListByUser(userID uint) ([]models.CycleEntry, error) {
	entries := make([]models.CycleEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByUserRange returns the entries dated in [fromStart, toEnd), oldest first.
func (repo *CycleEntryRepository) ListByUserRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.CycleEntry, error) {
	entries := make([]models.CycleEntry, 0)
	if err := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, fromStart, toEnd).
		Order("date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LastCycleStarts returns up to limit dates logged with cycle day 1, newest first.
func (repo *CycleEntryRepository) LastCycleStarts(userID uint, limit int) ([]time.Time, error) {
	entries := make([]models.CycleEntry, 0, limit)
	if err := repo.database.
		Select("date").
		Where("user_id = ? AND cycle_day = ?", userID, 1).
		Order("date DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	starts := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		starts = append(starts, entry.Date)
	}
	return starts, nil
}

func (repo *CycleEntryRepository) Latest(userID uint) (models.CycleEntry, bool, error) {
	entry := models.CycleEntry{}
	result := repo.database.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.CycleEntry{}, false, result.Error
	}
	return entry, result.RowsAffected > 0, nil
}

func (repo *CycleEntryRepository) FindByDate(userID uint, day time.Time) (models.CycleEntry, bool, error) {
	entry := models.CycleEntry{}
	result := repo.database.
		Where("user_id = ? AND date = ?", userID, day).
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.CycleEntry{}, false, result.Error
	}
	return entry, result.RowsAffected > 0, nil
}

// Create inserts entry. A second entry for the same user and date fails with ErrDuplicateEntry.
func (repo *CycleEntryRepository) Create(entry *models.CycleEntry) error {
	if err := repo.database.Create(entry).Error; err != nil {
		if isDuplicateError(err) {
			return fmt.Errorf("create cycle entry %s: %w", entry.Date.Format("2006-01-02"), ErrDuplicateEntry)
		}
		return err
	}
	return nil
}

// CreateBatch inserts entries atomically.
func (repo *CycleEntryRepository) CreateBatch(entries []models.CycleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return repo.database.Transaction(func(tx *gorm.DB) error {
		for index := range entries {
			if err := tx.Create(&entries[index]).Error; err != nil {
				if isDuplicateError(err) {
					return fmt.Errorf("create cycle entry %s: %w", entries[index].Date.Format("2006-01-02"), ErrDuplicateEntry)
				}
				return err
			}
		}
		return nil
	})
}
