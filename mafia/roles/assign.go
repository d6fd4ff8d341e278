package roles

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// MinPlayers is the smallest table a game can start with.
const MinPlayers = 3

var ErrTooFewPlayers = errors.New("not enough players")

// Assigner deals roles from a configured pool. The zero value draws from
// crypto/rand.
type Assigner struct {
	// Rand overrides the entropy source, mainly for tests.
	Rand io.Reader
}

// Pool builds the role pool for n players before shuffling: every catalog
// role repeated by its count, seeded with the filler if empty and padded
// with the filler up to n.
func Pool(cfg Config, n int) []Role {
	pool := make([]Role, 0, n)
	for _, r := range Catalog {
		for i := 0; i < cfg.Counts[r]; i++ {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, Filler)
	}
	for len(pool) < n {
		pool = append(pool, Filler)
	}
	return pool
}

// Assign maps each player key to a role. Both the pool and the player order
// are permuted independently before zipping.
func (a Assigner) Assign(players []string, cfg Config) (map[string]Role, error) {
	if len(players) < MinPlayers {
		return nil, ErrTooFewPlayers
	}
	pool := Pool(cfg, len(players))
	if err := a.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] }); err != nil {
		return nil, err
	}
	pool = pool[:len(players)]

	order := append([]string(nil), players...)
	if err := a.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] }); err != nil {
		return nil, err
	}

	out := make(map[string]Role, len(order))
	for i, key := range order {
		out[key] = pool[i]
	}
	return out, nil
}

// shuffle is a Fisher-Yates pass with a uniform index per step.
func (a Assigner) shuffle(n int, swap func(i, j int)) error {
	src := a.Rand
	if src == nil {
		src = rand.Reader
	}
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(src, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("draw shuffle index: %w", err)
		}
		swap(i, int(j.Int64()))
	}
	return nil
}
