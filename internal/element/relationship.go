package element

import "fmt"

// Relationship classifies an ordered (attacker, defender) element pair.
// Exactly one applies per pair; generating and overcoming are directional.
type Relationship uint8

const (
	Neutral Relationship = iota
	Same
	Generating
	Overcoming

	relationshipCount
)

// String returns the config name of the relationship.
func (r Relationship) String() string {
	switch r {
	case Same:
		return "same"
	case Generating:
		return "generating"
	case Overcoming:
		return "overcoming"
	case Neutral:
		return "neutral"
	default:
		return fmt.Sprintf("relationship(%d)", uint8(r))
	}
}

// ParseRelationship converts a config name into a Relationship.
func ParseRelationship(s string) (Relationship, error) {
	switch s {
	case "same":
		return Same, nil
	case "generating":
		return Generating, nil
	case "overcoming":
		return Overcoming, nil
	case "neutral":
		return Neutral, nil
	}
	return Neutral, fmt.Errorf("unknown relationship %q", s)
}
