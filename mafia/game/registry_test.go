package game

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/portal-mafia/mafia/protocol"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestRoomCodeShape(t *testing.T) {
	m := NewManager()
	for i := 0; i < 50; i++ {
		r, err := m.create()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{5}$`, r.ID)
	}
	assert.Equal(t, 50, m.Len())
}

func TestRoomCodeCollisionRetries(t *testing.T) {
	m := NewManager()
	// Zero bytes always draw index 0 ('A'); ones draw index 1 ('B').
	m.rand = io.MultiReader(
		bytes.NewReader(make([]byte, 5)),
		bytes.NewReader(make([]byte, 5)),
		bytes.NewReader(bytes.Repeat([]byte{1}, 5)),
	)

	first, err := m.create()
	require.NoError(t, err)
	assert.Equal(t, "AAAAA", first.ID)

	second, err := m.create()
	require.NoError(t, err)
	assert.Equal(t, "BBBBB", second.ID)
	assert.Equal(t, 2, m.Len())
}

func TestRoomCodeEntropyFailure(t *testing.T) {
	h := newHarness(t)
	h.rooms.rand = failingReader{}

	c := h.conn()
	res := h.send(c, protocol.CreateRoom, protocol.CreateRoomPayload{Name: "alice"})
	requireErr(t, c, res, ErrNoRoomCode)
	assert.Zero(t, h.rooms.Len())
}

func TestLookupNormalizesCode(t *testing.T) {
	m := NewManager()
	r, err := m.create()
	require.NoError(t, err)

	for _, code := range []string{r.ID, " " + r.ID + " ", strings.ToLower(r.ID)} {
		got, ok := m.Lookup(code)
		require.True(t, ok, code)
		assert.Same(t, r, got)
	}
	_, ok := m.Lookup("")
	assert.False(t, ok)
}
