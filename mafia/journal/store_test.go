package journal

import (
	"testing"
	"time"

	"github.com/cockroachdb/pebble/v2/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/portal-mafia/mafia/game"
)

func TestAppendAndLoadRecent(t *testing.T) {
	s, err := Open("journal", vfs.NewMem())
	require.NoError(t, err)
	defer s.Close()

	for i, kind := range []string{game.JournalRoomCreated, game.JournalGameStarted, game.JournalPhaseChanged, game.JournalRoomDestroyed} {
		require.NoError(t, s.Append(Entry{TS: int64(i), Room: "ABCDE", Kind: kind}))
	}

	all, err := s.LoadRecent(0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, game.JournalRoomCreated, all[0].Kind)
	assert.Equal(t, game.JournalRoomDestroyed, all[3].Kind)

	recent, err := s.LoadRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, game.JournalPhaseChanged, recent[0].Kind)
	assert.Equal(t, game.JournalRoomDestroyed, recent[1].Kind)

	more, err := s.LoadRecent(10)
	require.NoError(t, err)
	assert.Len(t, more, 4)
}

func TestReopenContinuesSequence(t *testing.T) {
	fs := vfs.NewMem()
	s, err := Open("journal", fs)
	require.NoError(t, err)
	require.NoError(t, s.Append(Entry{Room: "AAAAA", Kind: game.JournalRoomCreated}))
	require.NoError(t, s.Close())

	s, err = Open("journal", fs)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(1), s.next)
	require.NoError(t, s.Append(Entry{Room: "BBBBB", Kind: game.JournalRoomCreated}))

	all, err := s.LoadRecent(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AAAAA", all[0].Room)
	assert.Equal(t, "BBBBB", all[1].Room)
}

func TestRecordImplementsGameJournal(t *testing.T) {
	s, err := Open("journal", vfs.NewMem())
	require.NoError(t, err)
	defer s.Close()

	var j game.Journal = s
	at := time.UnixMilli(1_700_000_000_000)
	j.Record(game.JournalEvent{At: at, Room: "QWERT", Kind: game.JournalGameStarted, Detail: "players=5"})

	all, err := s.LoadRecent(1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, Entry{TS: at.UnixMilli(), Room: "QWERT", Kind: game.JournalGameStarted, Detail: "players=5"}, all[0])
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Append(Entry{Kind: "x"}))
	entries, err := s.LoadRecent(5)
	assert.NoError(t, err)
	assert.Nil(t, entries)
	assert.NoError(t, s.Close())
}
