package docstore

import (
	"os"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestSQLStore(t *testing.T, dialector gorm.Dialector) *SQLStore {
	t.Helper()
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// the test database is dedicated; start and finish empty
	clear := func() { db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&DocumentRecord{}) }
	clear()
	t.Cleanup(clear)
	return NewSQLStore(db)
}

func TestSQLStoreMySQL(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	runStoreConformance(t, openTestSQLStore(t, mysql.Open(dsn)))
}

func TestSQLStorePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	runStoreConformance(t, openTestSQLStore(t, postgres.Open(dsn)))
}
