package roles

// Team represents the alignment of a role.
type Team string

const (
	TeamCitizen Team = "citizen"
	TeamMafia   Team = "mafia"
)

// Role is the name of an assignable secret role.
type Role string

const (
	Mafia      Role = "mafia"
	Pablo      Role = "pablo"
	Doctor     Role = "doctor"
	Police     Role = "police"
	Soldier    Role = "soldier"
	Politician Role = "politician"
	Citizen    Role = "citizen"
)

// Filler pads the assignment pool when the configured counts fall short.
const Filler = Citizen

// Spec defines the metadata sent to a player alongside their role.
type Spec struct {
	Name Role
	Team Team
	Desc string
}

// Catalog is the fixed, ordered set of known roles.
var Catalog = []Role{Mafia, Pablo, Doctor, Police, Soldier, Politician, Citizen}

var specs = map[Role]Spec{
	Mafia: {
		Name: Mafia,
		Team: TeamMafia,
		Desc: "Each night, pick someone to eliminate. You can talk to your team in secret at night.",
	},
	Pablo: {
		Name: Pablo,
		Team: TeamMafia,
		Desc: "The boss of the mafia. Shows up as innocent to investigations and joins the secret night chat.",
	},
	Doctor: {
		Name: Doctor,
		Team: TeamCitizen,
		Desc: "Each night, choose one player to protect from the mafia's attack.",
	},
	Police: {
		Name: Police,
		Team: TeamCitizen,
		Desc: "Each night, investigate one player to learn whether they are mafia.",
	},
	Soldier: {
		Name: Soldier,
		Team: TeamCitizen,
		Desc: "Survives one mafia attack.",
	},
	Politician: {
		Name: Politician,
		Team: TeamCitizen,
		Desc: "Cannot be executed by vote and your vote counts twice.",
	},
	Citizen: {
		Name: Citizen,
		Team: TeamCitizen,
		Desc: "No ability, but discussion and votes can still root out the mafia.",
	},
}

// Lookup returns the spec of a catalog role.
func Lookup(r Role) (Spec, bool) {
	s, ok := specs[r]
	return s, ok
}

// Known reports whether r is a catalog member.
func Known(r Role) bool {
	_, ok := specs[r]
	return ok
}

// Privileged reports whether r may use the night-time team channel.
func Privileged(r Role) bool {
	s, ok := specs[r]
	return ok && s.Team == TeamMafia
}
