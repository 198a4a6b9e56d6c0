package hwtool

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hardware-observer/hardware-exporter/slog"
)

// Watch re-runs detection when the resource dir changes, so a newly attached
// tool comes online without a restart. Events are debounced because an
// attach shows up as a create followed by several writes. Watch blocks until
// quit is closed; run it in a goroutine.
func (l *Locator) Watch(onChange func(), quit <-chan struct{}) error {
	if l.cfg.ResourceDir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(l.cfg.ResourceDir); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			slog.Debugf("resource dir event: %v", ev)
			pending = time.After(time.Second)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Errorf("resource dir watch: %v", err)
		case <-pending:
			pending = nil
			if err := l.Detect(); err != nil {
				slog.Errorf("redetect after resource change: %v", err)
				continue
			}
			if onChange != nil {
				onChange()
			}
		case <-quit:
			return nil
		}
	}
}
