// Package broker is an in-process pub/sub used to fan out committed game
// state to every connected participant of a game. Subscribers receive
// full JSON-encoded snapshots, never partial patches.
package broker

import "sync"

type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func New() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a buffered channel receiving every payload published
// for gameID until Unsubscribe is called.
func (b *Broker) Subscribe(gameID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[chan []byte]struct{})
	}
	b.subs[gameID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(gameID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[gameID], ch)
	if len(b.subs[gameID]) == 0 {
		delete(b.subs, gameID)
	}
	b.mu.Unlock()
}

// Publish delivers payload to all subscribers of gameID. A subscriber
// that cannot keep up is skipped rather than blocking the writer; it will
// catch up on the next snapshot.
func (b *Broker) Publish(gameID string, payload []byte) {
	b.mu.RLock()
	for ch := range b.subs[gameID] {
		select {
		case ch <- payload:
		default:
		}
	}
	b.mu.RUnlock()
}
