package watch

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/livetune/logging"
)

const (
	pollStartInterval = 50 * time.Millisecond
	pollMinInterval   = 10 * time.Millisecond
	pollMaxInterval   = 500 * time.Millisecond
	// Consecutive quiet samples before the interval starts backing off.
	pollQuietThreshold = 10
)

// pollNotifier samples the target's modification timestamp on an adaptive
// interval. After a detected change the interval drops to the floor to
// catch rapid follow-up edits; on an idle file it doubles toward the
// ceiling to avoid wasted wakeups.
type pollNotifier struct {
	done chan struct{}
	wg   sync.WaitGroup
	log  *logrus.Entry
}

func newPollNotifier() *pollNotifier {
	return &pollNotifier{
		log: logging.NewLogger("watch"),
	}
}

func (n *pollNotifier) start(target Target, onChange func()) error {
	n.done = make(chan struct{})
	n.wg.Add(1)
	go n.run(target, onChange)
	return nil
}

func (n *pollNotifier) run(target Target, onChange func()) {
	defer n.wg.Done()

	var lastMod time.Time
	haveMod := false
	first := true
	interval := pollStartInterval
	quiet := 0

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		info, err := os.Stat(target.Path)
		changed := false
		if err == nil {
			mod := info.ModTime()
			switch {
			case !haveMod:
				// The file appeared; the very first sample only
				// establishes the baseline.
				changed = !first
				lastMod = mod
				haveMod = true
			case !mod.Equal(lastMod):
				changed = true
				lastMod = mod
			}
		} else {
			haveMod = false
		}
		first = false

		if changed {
			n.log.WithField("path", target.Path).Debug("poll detected change")
			onChange()
			interval = pollMinInterval
			quiet = 0
		} else {
			quiet++
			if quiet > pollQuietThreshold && interval < pollMaxInterval {
				interval *= 2
				if interval > pollMaxInterval {
					interval = pollMaxInterval
				}
			}
		}

		timer.Reset(interval)
		select {
		case <-timer.C:
		case <-n.done:
			return
		}
	}
}

func (n *pollNotifier) stop() {
	if n.done == nil {
		return
	}
	close(n.done)
	n.wg.Wait()
	n.done = nil
}
