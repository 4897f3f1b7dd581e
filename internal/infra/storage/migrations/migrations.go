package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/m04kA/septic-booking-service/pkg/txmanager"
)

//go:embed *.sql
var files embed.FS

// Apply выполняет SQL миграции по порядку имён файлов.
// Все скрипты идемпотентны (IF NOT EXISTS), поэтому повторный запуск безопасен.
func Apply(ctx context.Context, db txmanager.DBExecutor) error {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

// Names список встроенных миграций
func Names() []string {
	names, _ := fs.Glob(files, "*.sql")
	sort.Strings(names)
	return names
}
