package roles

const (
	DefaultMaxPlayers = 11
	MinMaxPlayers     = 3
	MaxMaxPlayers     = 20
	MaxRoleCount      = 50
)

// Config is the per-room role composition set by the host.
type Config struct {
	MaxPlayers int
	Counts     map[Role]int
}

// DefaultConfig returns the settings a freshly created room starts with.
func DefaultConfig() Config {
	c := Config{MaxPlayers: DefaultMaxPlayers, Counts: make(map[Role]int, len(Catalog))}
	for _, r := range Catalog {
		c.Counts[r] = 0
	}
	c.Counts[Mafia] = 1
	c.Counts[Doctor] = 1
	c.Counts[Police] = 1
	return c
}

// SetMaxPlayers stores n clamped to [MinMaxPlayers, MaxMaxPlayers].
func (c *Config) SetMaxPlayers(n int) {
	c.MaxPlayers = clamp(n, MinMaxPlayers, MaxMaxPlayers)
}

// SetCounts replaces every catalog count. Missing roles become 0, unknown
// names are ignored and values are clamped to [0, MaxRoleCount].
func (c *Config) SetCounts(counts map[string]int) {
	next := make(map[Role]int, len(Catalog))
	for _, r := range Catalog {
		next[r] = clamp(counts[string(r)], 0, MaxRoleCount)
	}
	c.Counts = next
}

// EnableOnly sets a count of one for each listed role and zero for the rest.
func (c *Config) EnableOnly(enabled []string) {
	counts := make(map[string]int, len(enabled))
	for _, name := range enabled {
		if Known(Role(name)) {
			counts[name] = 1
		}
	}
	c.SetCounts(counts)
}

// CountsByName returns a fresh copy of the counts keyed by role name.
func (c Config) CountsByName() map[string]int {
	out := make(map[string]int, len(c.Counts))
	for r, n := range c.Counts {
		out[string(r)] = n
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
