package services_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sqlizer/sqlizer/internal/models"
	"github.com/sqlizer/sqlizer/internal/services"
	"gorm.io/gorm"
)

const testJWTKey = "test-signing-key"

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Workgroup{},
		&models.UserWorkgroup{},
		&models.DatabaseGroup{},
		&models.Database{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func registerTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user, err := services.RegisterUser(db, services.RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "s3cret!pass",
	})
	if err != nil {
		t.Fatalf("Failed to register %s: %v", email, err)
	}
	return user
}
