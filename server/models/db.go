package models

import (
	"fmt"

	sqlite "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/obiesoto/herald/shared"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// Initialize opens the store: postgres when a DATABASE_URL is configured,
// otherwise an encrypted sqlite file keyed by the configured passphrase.
func Initialize(config *shared.DatabaseConfig) error {
	var err error

	if config.URL != "" {
		db, err = gorm.Open(postgres.Open(config.URL), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		return errors.Wrap(err, "unable to open postgres store")
	}

	dbFile := config.Sqlite.File
	if dbFile == "" {
		dbFile = "herald.db"
	}

	dsn := fmt.Sprintf("%v?_pragma_key=%s&_pragma_cipher_page_size=4096", dbFile, config.Sqlite.PassPhrase)
	db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	return errors.Wrap(err, "unable to open sqlite store")
}

// InitializeTestDb swaps the store for a shared in-memory sqlite database
// and wipes it, so each test starts from a clean slate.
func InitializeTestDb() {
	var err error

	db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	if err = AutoMigrate(); err != nil {
		panic(err)
	}

	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{
		&Contact{}, &EmailAccount{}, &TwilioAccount{},
		&PushToken{}, &PhonePushMapping{}, &User{},
	} {
		session.Delete(model)
	}
}

func AutoMigrate() error {
	return db.AutoMigrate(
		&User{},
		&Contact{},
		&EmailAccount{},
		&TwilioAccount{},
		&PushToken{},
		&PhonePushMapping{},
	)
}
