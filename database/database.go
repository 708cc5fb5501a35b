package database

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"reelfake-backend/logger"
	"reelfake-backend/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// Connect opens the catalog database.
func Connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=reelfake port=5432 sslmode=disable"
	}
	return open(dsn)
}

// ConnectUsers opens the users database, or returns catalog when
// USERS_DATABASE_URL is unset so both live in one database.
func ConnectUsers(catalog *gorm.DB) (*gorm.DB, error) {
	dsn := os.Getenv("USERS_DATABASE_URL")
	if dsn == "" {
		logger.L().Info("USERS_DATABASE_URL not set, users share the catalog database")
		return catalog, nil
	}
	return open(dsn)
}

func enablePgcrypto(db *gorm.DB) error {
	// gen_random_uuid() comes from pgcrypto on older PostgreSQL versions.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := enablePgcrypto(db); err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.Genre{},
		&models.Country{},
		&models.Language{},
		&models.Movie{},
		&models.Actor{},
		&models.MovieActor{},
		&models.Store{},
		&models.Inventory{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Rental{},
	)
}

func MigrateUsers(db *gorm.DB) error {
	if err := enablePgcrypto(db); err != nil {
		return err
	}
	return db.AutoMigrate(&models.User{}, &models.RefreshToken{})
}

// SeedReferenceData writes the fixed genre, country and language tables.
// Existing rows are updated in place, so it is safe to run on every start.
func SeedReferenceData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name"}),
		}).Create(&models.GenreTable).Error; err != nil {
			return fmt.Errorf("seeding genres: %w", err)
		}

		isoUpsert := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"iso_code", "name"}),
		}
		if err := tx.Clauses(isoUpsert).Create(&models.CountryTable).Error; err != nil {
			return fmt.Errorf("seeding countries: %w", err)
		}
		if err := tx.Clauses(isoUpsert).Create(&models.LanguageTable).Error; err != nil {
			return fmt.Errorf("seeding languages: %w", err)
		}
		return nil
	})
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@reelfake.com"
	}

	var existingUser models.User
	err := db.Where("email = ?", adminEmail).First(&existingUser).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	generated := adminPassword == ""
	if generated {
		adminPassword, err = randomPassword()
		if err != nil {
			return err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Name:     "Admin User",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	if generated {
		logger.L().Warn("default admin created with a generated password; set ADMIN_PASSWORD to choose one",
			zap.String("email", adminEmail), zap.String("password", adminPassword))
	} else {
		logger.L().Info("default admin created", zap.String("email", adminEmail))
	}
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
