package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"model-viewer/internal/logger"
)

// shaderWatcher signals Changed whenever a shader source in dir is written,
// created or renamed. Bursts collapse into one pending signal; the render
// loop drains it and reloads on the GL thread.
type shaderWatcher struct {
	watcher *fsnotify.Watcher
	Changed chan struct{}
	done    chan struct{}
}

func newShaderWatcher(dir string) (*shaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}
	sw := &shaderWatcher{
		watcher: w,
		Changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go sw.loop()
	logger.Log.Info("Watching shaders", zap.String("dir", dir))
	return sw, nil
}

func (sw *shaderWatcher) loop() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !isShaderFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case sw.Changed <- struct{}{}:
				default:
				}
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Shader watcher error", zap.Error(err))
		}
	}
}

func isShaderFile(name string) bool {
	switch filepath.Ext(name) {
	case ".vert", ".frag":
		return true
	}
	return false
}

func (sw *shaderWatcher) Close() {
	close(sw.done)
	sw.watcher.Close()
}
