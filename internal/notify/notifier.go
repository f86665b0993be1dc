package notify

import (
	"sync"
	"time"

	"github.com/theLastOfCats/gameshelf/internal/pubsub"
)

const DefaultDuration = 3 * time.Second

// Notifier is the transient message stream shown to the user. An empty
// message means "nothing to show".
type Notifier struct {
	duration time.Duration
	topic    pubsub.Topic[string]

	mu      sync.Mutex
	current string
	seq     uint64
	timer   *time.Timer
}

// New returns a notifier whose messages clear after d. Non-positive d uses
// DefaultDuration.
func New(d time.Duration) *Notifier {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Notifier{duration: d}
}

// Show publishes msg and schedules it to be cleared. A newer message
// replaces the pending clear of an older one.
func (n *Notifier) Show(msg string) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.current = msg
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.duration, func() { n.clear(seq) })
	n.mu.Unlock()

	n.topic.Publish(msg)
}

func (n *Notifier) clear(seq uint64) {
	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.current = ""
	n.timer = nil
	n.mu.Unlock()

	n.topic.Publish("")
}

func (n *Notifier) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *Notifier) Subscribe(fn func(string)) func() {
	return n.topic.Subscribe(fn)
}

// Stop cancels a pending clear.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
