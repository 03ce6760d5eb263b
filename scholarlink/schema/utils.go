package schema

import (
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh sqlite database under the test's temp
// directory with the full schema. A file-backed database keeps every
// pooled connection on the same data, which :memory: does not.
func SetupTestDB(t *testing.T) *gorm.DB {
	return SetupTestDBAt(t, filepath.Join(t.TempDir(), "scholarlink_test.db"))
}

// SetupTestDBAt is SetupTestDB with a caller-chosen path, for tests that
// reopen the database on extra connections.
func SetupTestDBAt(t *testing.T, path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("error opening test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("error getting sql.DB: %v", err)
		}
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("error closing database connection: %v", err)
		}
	})

	if err := db.AutoMigrate(AllTables()...); err != nil {
		t.Fatalf("error migrating tables: %v", err)
	}

	return db
}

// UriToDsn converts a postgres:// connection URI into the key=value DSN
// form the postgres driver expects.
func UriToDsn(uri string) string {
	parts, err := url.Parse(uri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")

	if dbname != "" {
		dbname = "dbname=" + dbname
	}

	return fmt.Sprintf("host=%v user=%v password=%v %v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}
