package simulator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/go-drift/permissions-helper/cmd/permhelper/internal/config"
)

// Watch reloads the device from path whenever the file is written and calls
// reloaded after each successful reload. It returns when ctx ends. A file
// that fails to load is logged and the previous device is kept.
//
// The parent directory is watched so that editors replacing the file by
// rename are still seen.
func (s *Simulator) Watch(ctx context.Context, path string, reloaded func(*config.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.WithField("path", target).Info("watching device file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(target, reloaded); err != nil {
				s.logger.WithError(err).Warn("device file not reloaded")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.WithError(err).Warn("watch error")
		}
	}
}

func (s *Simulator) reload(path string, reloaded func(*config.Config)) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if s.check != nil {
		if err := s.check(cfg); err != nil {
			return fmt.Errorf("invalid %s: %w", path, err)
		}
	}
	s.Update(cfg.Device)
	if reloaded != nil {
		reloaded(cfg)
	}
	return nil
}
