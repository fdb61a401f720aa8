package server

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// startTemplateWatcher initializes an fsnotify watcher on the template
// directory so edited pages take effect without a restart.
func (s *Server) startTemplateWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	go s.watchTemplates()

	if err := watcher.Add(s.cfg.Server.TemplatesDir); err != nil {
		return err
	}

	s.logger.WithField("templates_dir", s.cfg.Server.TemplatesDir).Info("Template watcher started")
	return nil
}

// watchTemplates selects on watcher channels and reloads on changes to
// .html files. Reloads are debounced because editors fire several events
// per save.
func (s *Server) watchTemplates() {
	defer s.watcher.Close()

	var pending *time.Timer
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.isTemplateEvent(event) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(200*time.Millisecond, s.reloadTemplates)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Error("Template watcher error")
		}
	}
}

func (s *Server) isTemplateEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".html") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

func (s *Server) reloadTemplates() {
	if err := s.renderer.Load(); err != nil {
		// Keep serving the last good set
		s.logger.WithError(err).Error("Template reload failed")
		return
	}
	s.logger.Info("Templates reloaded")
}

// stopTemplateWatcher closes the watcher (idempotent).
func (s *Server) stopTemplateWatcher() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}
