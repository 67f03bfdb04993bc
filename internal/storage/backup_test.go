package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func setupFileService(t *testing.T) *Service {
	t.Helper()

	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "collector.db")))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	svc := NewService(db)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_Backup(t *testing.T) {
	svc := setupFileService(t)
	ctx := context.Background()

	if err := svc.Collection().AddVersion(ctx, "lightning bolt", "Lightning Bolt", "M10"); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := svc.Backup(ctx, BackupConfig{Dir: dir})
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	config := DefaultConfig(path)
	config.AutoMigrate = false
	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open backup: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.Conn().QueryRow("SELECT COUNT(*) FROM collection_versions").Scan(&n); err != nil {
		t.Fatalf("query backup: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 owned copy in backup, got %d", n)
	}
}

func TestListBackups_PrunesOldest(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 4; i++ {
		name := fmt.Sprintf("%s2026010%d_120000.000.db", backupPrefix, i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := pruneBackups(dir, 2); err != nil {
		t.Fatalf("prune failed: %v", err)
	}

	backups, err := ListBackups(dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d", len(backups))
	}
	if filepath.Base(backups[0].Path) != backupPrefix+"20260104_120000.000.db" {
		t.Errorf("expected newest first, got %s", backups[0].Path)
	}
}

func TestListBackups_MissingDir(t *testing.T) {
	backups, err := ListBackups(filepath.Join(t.TempDir(), "none"))
	if err != nil || len(backups) != 0 {
		t.Errorf("expected no backups and no error, got %v, %v", backups, err)
	}
}
