package events

import (
	"sync"
	"time"
)

// subscriptionChannelSize defines the buffer of a subscriber channel.
// Emission is non-blocking: a slow subscriber loses events rather than
// stalling the engine.
const subscriptionChannelSize = 100

// reporter is the event reporter singleton.
var (
	mu       sync.RWMutex
	reporter *eventReporter
)

type eventReporter struct {
	subs map[*Subscription]struct{}
}

// Subscription is the receiving end of the event stream.
type Subscription struct {
	out chan UserEvent
}

// Out returns the channel the subscription delivers events on.
func (s *Subscription) Out() <-chan UserEvent {
	return s.out
}

// InitializeReporter starts the event reporting singleton. Emission is a
// no-op until it is called.
func InitializeReporter() {
	mu.Lock()
	defer mu.Unlock()
	if reporter == nil {
		reporter = &eventReporter{subs: map[*Subscription]struct{}{}}
	}
}

// CloseEventReporter shuts down the reporter and closes all subscriptions.
func CloseEventReporter() {
	mu.Lock()
	defer mu.Unlock()
	if reporter == nil {
		return
	}
	for sub := range reporter.subs {
		close(sub.out)
	}
	reporter = nil
}

// Subscribe registers a new event subscription. Returns nil if the reporter
// was not initialized.
func Subscribe() *Subscription {
	mu.Lock()
	defer mu.Unlock()
	if reporter == nil {
		return nil
	}
	sub := &Subscription{out: make(chan UserEvent, subscriptionChannelSize)}
	reporter.subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func Unsubscribe(sub *Subscription) {
	mu.Lock()
	defer mu.Unlock()
	if reporter == nil {
		return
	}
	if _, exist := reporter.subs[sub]; exist {
		delete(reporter.subs, sub)
		close(sub.out)
	}
}

func emitUserEvent(typ EventType, help string, failure bool, details any) {
	mu.RLock()
	defer mu.RUnlock()
	if reporter == nil {
		return
	}
	ev := UserEvent{
		Timestamp: time.Now(),
		Type:      typ,
		Help:      help,
		Failure:   failure,
		Details:   details,
	}
	for sub := range reporter.subs {
		select {
		case sub.out <- ev:
		default:
			// subscriber is not keeping up
		}
	}
}
