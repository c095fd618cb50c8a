package database

import (
	"testing"
)

func TestNewConnection_UnreachableHost(t *testing.T) {
	db, err := NewConnection("example.invalid", "5432", "pulse", "pulse", "pulse")
	if err == nil {
		db.Close()
		t.Fatal("Expected error when the database host is unreachable")
	}
}

// Connecting against a live database is covered by integration tests,
// which need a real Postgres instance and are not part of this suite.
