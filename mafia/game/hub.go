package game

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrHubClosed = errors.New("hub closed")

const commandBuffer = 256

// Hub runs every mutation of the room registry on a single goroutine:
// messages, connects, disconnects and timer ticks each run to completion
// before the next one starts.
type Hub struct {
	d        *Dispatcher
	commands chan func()
	closing  chan struct{}
	done     chan struct{}
	once     sync.Once
}

func NewHub(rooms *Manager, opts ...Option) *Hub {
	h := &Hub{
		commands: make(chan func(), commandBuffer),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	h.d = NewDispatcher(rooms, hubClock{h: h}, opts...)
	go h.loop()
	return h
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case fn := <-h.commands:
			fn()
		case <-h.closing:
			return
		}
	}
}

// enqueue blocks until fn is queued or the hub closes.
func (h *Hub) enqueue(fn func()) bool {
	select {
	case h.commands <- fn:
		return true
	case <-h.closing:
		return false
	}
}

// Connect greets c once it is ready to receive.
func (h *Hub) Connect(c Conn) {
	h.enqueue(func() { h.d.Connect(c).Deliver() })
}

// Receive handles one text frame read from c.
func (h *Hub) Receive(c Conn, raw []byte) {
	h.enqueue(func() { h.d.Dispatch(c, raw).Deliver() })
}

// Disconnect must be called once when c's transport goes away.
func (h *Hub) Disconnect(c Conn) {
	h.enqueue(func() { h.d.Disconnect(c).Deliver() })
}

// Stats reads registry counters through the loop.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	out := make(chan Stats, 1)
	if !h.enqueue(func() { out <- h.d.Stats() }) {
		return Stats{}, ErrHubClosed
	}
	select {
	case s := <-out:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	case <-h.done:
		return Stats{}, ErrHubClosed
	}
}

// Close stops the loop and waits for the running command to finish.
func (h *Hub) Close() {
	h.once.Do(func() { close(h.closing) })
	<-h.done
}

// hubClock turns a time.Ticker into fires queued on the hub loop.
type hubClock struct {
	h *Hub
}

func (c hubClock) Every(d time.Duration, fire func()) func() {
	t := time.NewTicker(d)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if !c.h.enqueue(fire) {
					return
				}
			case <-stop:
				return
			case <-c.h.closing:
				return
			}
		}
	}()
	return func() { once.Do(func() { close(stop) }) }
}
