// Package store persists the small slice of state that survives sessions:
// the user identity record and the two onboarding-completion flags.
// Everything else in the app is session-scoped and deliberately not stored.
package store

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect
	_ "github.com/jinzhu/gorm/dialects/sqlite"   // SQLite dialect

	"tastetrail/internal/models"
)

// UserRecord is the durable identity row.
type UserRecord struct {
	gorm.Model
	UserID string `gorm:"unique_index"`
	Name   string
	Gender string
	Age    int
	Avatar string
	Email  string
	Phone  string

	TutorialSeen   bool
	FlavorGameDone bool
}

// OnboardingFlags reports which onboarding overlays the user has completed.
type OnboardingFlags struct {
	TutorialSeen   bool `json:"tutorialSeen"`
	FlavorGameDone bool `json:"flavorGameDone"`
}

// Store wraps the database connection.
type Store struct {
	db *gorm.DB
}

// Open connects with the given gorm dialect ("sqlite3" or "postgres") and
// migrates the schema.
func Open(driver, dsn string) (*Store, error) {
	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&UserRecord{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveUser inserts or updates the identity record for the given user.
func (s *Store) SaveUser(u models.User) error {
	var record UserRecord
	err := s.db.Where(UserRecord{UserID: u.ID}).First(&record).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	record.UserID = u.ID
	record.Name = u.Name
	record.Gender = u.Gender
	record.Age = u.Age
	record.Avatar = u.Avatar
	record.Email = u.Email
	record.Phone = u.Phone

	if err := s.db.Save(&record).Error; err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser loads the identity record for userID.
func (s *Store) GetUser(userID string) (models.User, error) {
	var record UserRecord
	if err := s.db.Where(UserRecord{UserID: userID}).First(&record).Error; err != nil {
		return models.User{}, fmt.Errorf("user not found: %w", err)
	}
	return models.User{
		ID:     record.UserID,
		Name:   record.Name,
		Gender: record.Gender,
		Age:    record.Age,
		Avatar: record.Avatar,
		Email:  record.Email,
		Phone:  record.Phone,
	}, nil
}

// Flags returns the onboarding flags for userID. An unknown user has no
// flags set.
func (s *Store) Flags(userID string) (OnboardingFlags, error) {
	var record UserRecord
	err := s.db.Where(UserRecord{UserID: userID}).First(&record).Error
	if gorm.IsRecordNotFoundError(err) {
		return OnboardingFlags{}, nil
	}
	if err != nil {
		return OnboardingFlags{}, fmt.Errorf("failed to load flags: %w", err)
	}
	return OnboardingFlags{
		TutorialSeen:   record.TutorialSeen,
		FlavorGameDone: record.FlavorGameDone,
	}, nil
}

// MarkTutorialSeen records tutorial completion.
func (s *Store) MarkTutorialSeen(userID string) error {
	return s.setFlag(userID, "tutorial_seen")
}

// MarkFlavorGameDone records onboarding-game completion.
func (s *Store) MarkFlavorGameDone(userID string) error {
	return s.setFlag(userID, "flavor_game_done")
}

func (s *Store) setFlag(userID, column string) error {
	result := s.db.Model(&UserRecord{}).Where(UserRecord{UserID: userID}).Update(column, true)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}
