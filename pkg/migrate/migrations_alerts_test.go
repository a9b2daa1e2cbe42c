package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAlertsMigrationEnforcesUnresolvedUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reconciliation_alerts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reconciliation alerts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS reconciliation_alerts",
		"CREATE UNIQUE INDEX uq_reconciliation_alerts_unresolved_dedup",
		"WHERE NOT resolved",
		"DROP TABLE IF EXISTS reconciliation_alerts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSourceTablesMigrationShape(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_payment_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payment tables migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"CREATE TABLE IF NOT EXISTS payment_links",
		"CREATE TABLE IF NOT EXISTS webhook_events",
		"CREATE TABLE IF NOT EXISTS checkout_sessions",
		"payment_link_id UUID REFERENCES payment_links(id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
