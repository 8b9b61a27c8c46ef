package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/reward"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foyer.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.SQLitePath != "foyer.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	p, err := cfg.EnginePolicy()
	if err != nil {
		t.Fatalf("EnginePolicy: %v", err)
	}
	if !p.OneOffRepeatable || p.Fulfillment != reward.FulfillmentImmediate || p.Balance != reward.BalanceMember {
		t.Errorf("policy = %+v", p)
	}
	if p.Goal.Points != 100 {
		t.Errorf("goal points = %d, want 100", p.Goal.Points)
	}
	if cfg.Backup.RetentionDays != 30 {
		t.Errorf("retention = %d, want 30", cfg.Backup.RetentionDays)
	}
	if cfg.TrustProxy {
		t.Error("trust_proxy defaults to true, want false")
	}
}

func TestLoadFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
port: "9090"
timezone: America/Montreal
trust_proxy: true
storage:
  driver: file
  file_path: /var/lib/foyer/state.json
policy:
  oneoff_repeatable: false
  fulfillment: queued
  balance: shared
  goal_name: Parc d'attractions
  goal_points: 500
backup:
  s3:
    bucket: family-backups
    access_key: AK
    secret_key: SK
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if !cfg.TrustProxy {
		t.Error("trust_proxy not read from file")
	}
	sc := cfg.StoreConfig()
	if sc.Driver != "file" || sc.FilePath != "/var/lib/foyer/state.json" {
		t.Errorf("store config = %+v", sc)
	}
	p, err := cfg.EnginePolicy()
	if err != nil {
		t.Fatalf("EnginePolicy: %v", err)
	}
	if p.OneOffRepeatable || p.Fulfillment != reward.FulfillmentQueued || p.Balance != reward.BalanceShared {
		t.Errorf("policy = %+v", p)
	}
	if p.Goal.Name != "Parc d'attractions" || p.Goal.Points != 500 {
		t.Errorf("goal = %+v", p.Goal)
	}
	b := cfg.BackupS3()
	if b.Bucket != "family-backups" || b.Region != "us-east-1" || b.Prefix != "foyer/" {
		t.Errorf("backup = %+v", b)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "America/Montreal" {
		t.Errorf("location = %q", loc)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FOYER_PORT", "7000")
	t.Setenv("FOYER_SQLITE_PATH", "/data/foyer.db")
	t.Setenv("FOYER_POLICY_FULFILLMENT", "queued")
	t.Setenv("FOYER_BACKUP_S3_BUCKET", "env-bucket")
	t.Setenv("FOYER_PUSH_VAPID_PUBLIC_KEY", "pub")
	t.Setenv("FOYER_PUSH_VAPID_PRIVATE_KEY", "priv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("port = %q, want %q", cfg.Port, "7000")
	}
	if cfg.Storage.SQLitePath != "/data/foyer.db" {
		t.Errorf("sqlite path = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Policy.Fulfillment != "queued" {
		t.Errorf("fulfillment = %q", cfg.Policy.Fulfillment)
	}
	if cfg.Backup.S3.Bucket != "env-bucket" {
		t.Errorf("bucket = %q", cfg.Backup.S3.Bucket)
	}
	if !cfg.Push.Enabled() {
		t.Error("push not enabled by environment keys")
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"fulfillment", "policy:\n  fulfillment: later\n", "policy.fulfillment"},
		{"balance", "policy:\n  balance: bank\n", "policy.balance"},
		{"timezone", "timezone: Mars/Olympus\n", "timezone"},
		{"driver", "storage:\n  driver: mongo\n", "storage.driver"},
		{"postgres dsn", "storage:\n  driver: postgres\n", "storage.postgres_dsn"},
		{"half vapid pair", "push:\n  vapid_public_key: abc\n", "push"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			_, err := Load(writeConfig(t, tt.body))
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestVerifier(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{ParentCode: "4321"}}
	v, err := cfg.Verifier()
	if err != nil {
		t.Fatalf("Verifier: %v", err)
	}
	if !v.VerifyParentCode("4321") || v.VerifyParentCode("1234") {
		t.Error("plain code verifier mismatch")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg = &Config{Auth: AuthConfig{ParentCodeHash: string(hash), ParentCode: "4321"}}
	v, err = cfg.Verifier()
	if err != nil {
		t.Fatalf("Verifier: %v", err)
	}
	if !v.VerifyParentCode("2468") {
		t.Error("hash should take precedence")
	}

	cfg = &Config{Auth: AuthConfig{ParentCode: "12"}}
	if _, err := cfg.Verifier(); err == nil {
		t.Error("expected error for short code")
	}
	cfg = &Config{Auth: AuthConfig{ParentCodeHash: "plain"}}
	if _, err := cfg.Verifier(); err == nil {
		t.Error("expected error for non-bcrypt hash")
	}
}
