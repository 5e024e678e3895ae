package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"volume-mapper/internal/domain/entity"
)

// Watch перечитывает файл настроек при изменении и передаёт результат в fn.
// Следим за каталогом: редакторы часто заменяют файл целиком.
// Ошибки разбора логируются, старые настройки остаются в силе.
func Watch(ctx context.Context, path string, logger *zap.SugaredLogger, fn func(entity.ScanSettings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settings, err := LoadSettings(target)
			if err != nil {
				logger.Warnw("settings reload failed", "path", target, "error", err)
				continue
			}
			logger.Infow("settings reloaded", "path", target)
			fn(settings)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("settings watcher error", "error", err)
		}
	}
}
