package watch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/livetune/logging"
)

// fsnotifyNotifier watches the target's directory through the OS-native
// notification API (inotify, kqueue, ReadDirectoryChangesW, FSEvents) and
// filters events down to the single watched filename.
type fsnotifyNotifier struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	log     *logrus.Entry
}

func newFsnotifyNotifier() *fsnotifyNotifier {
	return &fsnotifyNotifier{
		log: logging.NewLogger("watch"),
	}
}

// probe checks that a native watcher can be created, then releases it.
func (n *fsnotifyNotifier) probe() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	return w.Close()
}

func (n *fsnotifyNotifier) start(target Target, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory, not the file: editors replace files on save,
	// which would silently kill a file-level watch.
	if err := watcher.Add(target.Dir); err != nil {
		watcher.Close()
		return err
	}

	n.watcher = watcher
	n.done = make(chan struct{})
	n.wg.Add(1)
	go n.run(target, onChange)
	return nil
}

func (n *fsnotifyNotifier) run(target Target, onChange func()) {
	defer n.wg.Done()
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target.Name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				n.log.WithField("path", target.Path).Debugf("fsnotify event: %v", event.Op)
				onChange()
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.log.WithField("path", target.Path).Warnf("watcher error: %v", err)
		case <-n.done:
			return
		}
	}
}

func (n *fsnotifyNotifier) stop() {
	if n.watcher == nil {
		return
	}
	close(n.done)
	// Closing the watcher also unblocks the event loop if it is mid-receive.
	n.watcher.Close()
	n.wg.Wait()
	n.watcher = nil
}
