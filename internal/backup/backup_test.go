package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir: t.TempDir(),
		DBFile:  "termins.db",
	}
}

func TestRun_CreatesStoreAndBackup(t *testing.T) {
	cfg := testConfig(t)

	dst, err := Run(cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if dst != filepath.Join(cfg.BackupDir(), FileName) {
		t.Fatalf("unexpected backup path %q", dst)
	}

	// Хранилище должно быть создано со схемой даже на пустом каталоге.
	if _, err := os.Stat(cfg.DBPath()); err != nil {
		t.Fatalf("expected store file to exist: %v", err)
	}

	src, err := os.ReadFile(cfg.DBPath())
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	copied, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if len(copied) == 0 || len(copied) != len(src) {
		t.Fatalf("expected backup to match store (%d bytes), got %d bytes", len(src), len(copied))
	}
}

func TestRun_OverwritesPriorBackup(t *testing.T) {
	cfg := testConfig(t)

	if err := os.MkdirAll(cfg.BackupDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(cfg.BackupDir(), FileName)
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatalf("write stale backup: %v", err)
	}

	if _, err := Run(cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	copied, err := os.ReadFile(stale)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(copied) == "stale" {
		t.Fatalf("expected prior backup to be overwritten")
	}
}
