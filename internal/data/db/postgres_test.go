package db

import (
	"testing"

	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

func TestPostgresDSN(t *testing.T) {
	got := PostgresDSN(Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "pearls",
		PostgresPassword: "p@ss word",
		PostgresName:     "pearls",
	})
	want := "postgres://pearls:p%40ss%20word@db:5432/pearls?sslmode=disable"
	if got != want {
		t.Fatalf("PostgresDSN=%q, want %q", got, want)
	}
}

func TestMySQLDSNParseTime(t *testing.T) {
	cases := map[string]string{
		"u:p@tcp(h:3306)/db":                  "u:p@tcp(h:3306)/db?parseTime=true",
		"u:p@tcp(h:3306)/db?charset=utf8mb4": "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=true",
		"u:p@tcp(h:3306)/db?parseTime=false": "u:p@tcp(h:3306)/db?parseTime=false",
	}
	for in, want := range cases {
		if got := mysqlDSN(in); got != want {
			t.Fatalf("mysqlDSN(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestSQLiteOpenAndMigrate(t *testing.T) {
	svc, err := NewDatabaseService(Config{Driver: DriverSQLite, SQLitePath: "file:migrate_test?mode=memory&cache=shared"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewDatabaseService: %v", err)
	}
	defer svc.Close()
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, table := range []string{"users", "deleted_items", "tweet_edits", "favorites"} {
		if !svc.DB().Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := NewDatabaseService(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
