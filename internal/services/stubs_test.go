package services

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/terraincognita07/cyclelog/internal/cycle"
	"github.com/terraincognita07/cyclelog/internal/db"
	"github.com/terraincognita07/cyclelog/internal/models"
)

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()
	day, err := cycle.ParseDate(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

func makeEntry(t *testing.T, raw string, cycleDay int, isPeriod bool) models.CycleEntry {
	t.Helper()
	return models.CycleEntry{
		UserID:   1,
		Date:     mustParseDay(t, raw),
		CycleDay: cycleDay,
		IsPeriod: isPeriod,
	}
}

type stubEntryRepo struct {
	entries   []models.CycleEntry
	nextID    uint
	listErr   error
	createErr error
}

func newStubEntryRepo(entries ...models.CycleEntry) *stubEntryRepo {
	repo := &stubEntryRepo{}
	for _, entry := range entries {
		entry := entry
		if err := repo.Create(&entry); err != nil {
			panic(err)
		}
	}
	return repo
}

func (stub *stubEntryRepo) sortedDesc(userID uint) []models.CycleEntry {
	matched := make([]models.CycleEntry, 0, len(stub.entries))
	for _, entry := range stub.entries {
		if entry.UserID == userID {
			matched = append(matched, entry)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched
}

func (stub *stubEntryRepo) ListByUser(userID uint) ([]models.CycleEntry, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	return stub.sortedDesc(userID), nil
}

func (stub *stubEntryRepo) ListByUserRange(userID uint, fromStart time.Time, toEnd time.Time) ([]models.CycleEntry, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	matched := make([]models.CycleEntry, 0)
	all := stub.sortedDesc(userID)
	for index := len(all) - 1; index >= 0; index-- {
		entry := all[index]
		if !entry.Date.Before(fromStart) && entry.Date.Before(toEnd) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (stub *stubEntryRepo) LastCycleStarts(userID uint, limit int) ([]time.Time, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	starts := make([]time.Time, 0, limit)
	for _, entry := range stub.sortedDesc(userID) {
		if entry.CycleDay == 1 && len(starts) < limit {
			starts = append(starts, entry.Date)
		}
	}
	return starts, nil
}

func (stub *stubEntryRepo) Latest(userID uint) (models.CycleEntry, bool, error) {
	all := stub.sortedDesc(userID)
	if len(all) == 0 {
		return models.CycleEntry{}, false, nil
	}
	return all[0], true, nil
}

func (stub *stubEntryRepo) FindByDate(userID uint, day time.Time) (models.CycleEntry, bool, error) {
	for _, entry := range stub.entries {
		if entry.UserID == userID && entry.Date.Equal(day) {
			return entry, true, nil
		}
	}
	return models.CycleEntry{}, false, nil
}

func (stub *stubEntryRepo) Create(entry *models.CycleEntry) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	for _, existing := range stub.entries {
		if existing.UserID == entry.UserID && existing.Date.Equal(entry.Date) {
			return fmt.Errorf("create cycle entry: %w", db.ErrDuplicateEntry)
		}
	}
	stub.nextID++
	entry.ID = stub.nextID
	stub.entries = append(stub.entries, *entry)
	return nil
}

func (stub *stubEntryRepo) CreateBatch(entries []models.CycleEntry) error {
	for index := range entries {
		if err := stub.Create(&entries[index]); err != nil {
			return err
		}
	}
	return nil
}

type stubUserRepo struct {
	users     []models.User
	findErr   error
	updateErr error
}

func (stub *stubUserRepo) FindByID(userID uint) (models.User, bool, error) {
	if stub.findErr != nil {
		return models.User{}, false, stub.findErr
	}
	for _, user := range stub.users {
		if user.ID == userID {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *stubUserRepo) FindByEmail(email string) (models.User, bool, error) {
	if stub.findErr != nil {
		return models.User{}, false, stub.findErr
	}
	for _, user := range stub.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *stubUserRepo) Create(user *models.User) error {
	for _, existing := range stub.users {
		if existing.Email == user.Email {
			return fmt.Errorf("create user: %w", db.ErrDuplicateEntry)
		}
	}
	user.ID = uint(len(stub.users) + 1)
	stub.users = append(stub.users, *user)
	return nil
}

func (stub *stubUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	if stub.updateErr != nil {
		return stub.updateErr
	}
	for index := range stub.users {
		if stub.users[index].ID == userID {
			stub.users[index].PasswordHash = passwordHash
			stub.users[index].MustChangePassword = mustChangePassword
			return nil
		}
	}
	return fmt.Errorf("user %d not found", userID)
}
