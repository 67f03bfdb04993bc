package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const backupPrefix = "collection_"

// BackupConfig holds configuration for backup operations.
type BackupConfig struct {
	// Dir receives the backup files.
	Dir string

	// Keep is the number of most recent backups retained. Zero keeps all.
	Keep int
}

// DefaultBackupConfig places backups in a "backups" directory next to the
// database at dbPath.
func DefaultBackupConfig(dbPath string) BackupConfig {
	return BackupConfig{
		Dir:  filepath.Join(filepath.Dir(dbPath), "backups"),
		Keep: 5,
	}
}

// BackupInfo describes a backup file.
type BackupInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Backup writes a consistent copy of the database with VACUUM INTO and
// prunes old backups. It returns the path of the new file.
func (s *Service) Backup(ctx context.Context, config BackupConfig) (string, error) {
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path := filepath.Join(config.Dir, backupPrefix+time.Now().Format("20060102_150405.000")+".db")
	if _, err := s.db.Conn().ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	if err := verifyBackup(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}

	if config.Keep > 0 {
		if err := pruneBackups(config.Dir, config.Keep); err != nil {
			return path, err
		}
	}
	return path, nil
}

// verifyBackup opens the copy and reads the collection table.
func verifyBackup(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collection_versions").Scan(&n)
}

// ListBackups returns the backups in dir, newest first. A missing directory
// has no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupPrefix) || filepath.Ext(name) != ".db" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Names embed the timestamp, so they sort chronologically.
	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return strings.Compare(b.Path, a.Path)
	})
	return backups, nil
}

func pruneBackups(dir string, keep int) error {
	backups, err := ListBackups(dir)
	if err != nil {
		return err
	}
	for _, b := range backups[min(keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup: %w", err)
		}
	}
	return nil
}
