package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	CycleEntries *CycleEntryRepository
	GoogleTokens *GoogleTokenRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		CycleEntries: NewCycleEntryRepository(database),
		GoogleTokens: NewGoogleTokenRepository(database),
	}
}
