package model

// RelationType is the closed set of relationship kinds between titles.
type RelationType string

// Relationship kinds.
const (
	RelationSequel      RelationType = "sequel"
	RelationCrossover   RelationType = "crossover"
	RelationSpinoff     RelationType = "spinoff"
	RelationTeamUp      RelationType = "team_up"
	RelationPostCredits RelationType = "post_credits"
)

// RelationTypes lists every accepted relationship kind in display order.
var RelationTypes = []RelationType{
	RelationSequel,
	RelationCrossover,
	RelationSpinoff,
	RelationTeamUp,
	RelationPostCredits,
}

// Valid reports whether t is a known relationship kind.
func (t RelationType) Valid() bool {
	for _, k := range RelationTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Relationship is an authored tuple referencing titles by name.
// Side is empty when the author left placement to the layout.
type Relationship struct {
	Type RelationType `json:"type"`
	From string       `json:"from"`
	To   string       `json:"to"`
	Side Side         `json:"side,omitempty"`
}

// Connection is a Relationship resolved against the catalog.
type Connection struct {
	Type   RelationType `json:"type"`
	FromID string       `json:"from_id"`
	ToID   string       `json:"to_id"`
	Side   Side         `json:"side,omitempty"`
}

// Touches reports whether id is either end of the connection.
func (c Connection) Touches(id string) bool { return c.FromID == id || c.ToID == id }
