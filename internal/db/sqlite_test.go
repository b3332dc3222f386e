package db

import (
	"net/url"
	"strings"
	"testing"
)

func TestSQLiteDSNCarriesPragmas(t *testing.T) {
	dsn := sqliteDSN("/tmp/bitebuddy.db")
	path, rawQuery, ok := strings.Cut(dsn, "?")
	if !ok || path != "/tmp/bitebuddy.db" {
		t.Fatalf("sqliteDSN() = %q", dsn)
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		t.Fatalf("parse dsn query: %v", err)
	}
	if got := query["_pragma"]; len(got) != len(sqlitePragmas) || got[0] != "foreign_keys(1)" {
		t.Fatalf("_pragma = %v, want %v", got, sqlitePragmas)
	}
}

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	database := openTestDatabase(t)

	var enabled int
	if err := database.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}
}
