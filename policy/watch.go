package policy

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a policy file whenever it is written or replaced.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching path. apply is called from the watcher goroutine
// with every successfully loaded policy; onErr, if not nil, receives load
// and watch errors. The file's directory is watched rather than the file
// itself so that editors that save by rename are picked up.
//
// The current contents are not applied; call [Load] first.
func Watch(path string, apply func(Policy), onErr func(error)) (*Watcher, error) {
	if apply == nil {
		return nil, fmt.Errorf("policy: Watch: nil apply func")
	}
	if _, err := FormatOf(path); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	clean := filepath.Clean(path)
	if err := fw.Add(filepath.Dir(clean)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("policy: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:    clean,
		watcher: fw,
		done:    make(chan struct{}),
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	w.wg.Add(1)
	go w.loop(apply, onErr)
	return w, nil
}

func (w *Watcher) loop(apply func(Policy), onErr func(error)) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			p, err := Load(w.path)
			if err != nil {
				onErr(err)
				continue
			}
			apply(p)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			onErr(err)
		}
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for its goroutine to exit.
// Close is idempotent.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
