package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/config"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/db"
	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
)

// FileName — фиксированное имя резервной копии; ротации нет,
// прежняя копия перезаписывается.
const FileName = "termins_backup.db"

// Run выполняет резервное копирование хранилища: сначала гарантирует,
// что файл и схема существуют, затем копирует файл в каталог backups.
// Вызывается до первого интерактивного действия. Возвращает путь копии.
func Run(cfg *config.Config) (string, error) {
	if err := ensureStore(cfg); err != nil {
		return "", err
	}

	src := cfg.DBPath()
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("stat store: %w", err)
	}

	if err := os.MkdirAll(cfg.BackupDir(), 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	dst := filepath.Join(cfg.BackupDir(), FileName)
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func ensureStore(cfg *config.Config) error {
	gormDB, err := db.NewGormDB(cfg)
	if err != nil {
		return err
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy store: %w", err)
	}
	return out.Sync()
}
