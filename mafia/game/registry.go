package game

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5
)

// Manager owns every live room keyed by code. It lives as long as the
// process and is only touched from the Hub loop.
type Manager struct {
	rooms map[string]*Room
	rand  io.Reader
}

func NewManager() *Manager {
	return &Manager{rooms: make(map[string]*Room), rand: rand.Reader}
}

// create registers a room under a fresh code, retrying on collision.
func (m *Manager) create() (*Room, error) {
	for {
		code, err := m.newCode()
		if err != nil {
			return nil, err
		}
		if _, taken := m.rooms[code]; taken {
			continue
		}
		r := newRoom(code)
		m.rooms[code] = r
		return r, nil
	}
}

func (m *Manager) newCode() (string, error) {
	var b strings.Builder
	b.Grow(codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(m.rand, max)
		if err != nil {
			return "", fmt.Errorf("draw room code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// Lookup finds a room by code, ignoring case and surrounding space.
func (m *Manager) Lookup(code string) (*Room, bool) {
	r, ok := m.rooms[strings.ToUpper(strings.TrimSpace(code))]
	return r, ok
}

// destroyIfEmpty drops r once it has no live connection left.
func (m *Manager) destroyIfEmpty(r *Room) bool {
	if r.LiveConnections() > 0 {
		return false
	}
	r.timer.unschedule()
	if current, ok := m.rooms[r.ID]; ok && current == r {
		delete(m.rooms, r.ID)
	}
	return true
}

// Len is the number of live rooms.
func (m *Manager) Len() int { return len(m.rooms) }
