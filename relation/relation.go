// Package relation defines the fixed semantic-relation enumeration shared
// by the candidate matrix, the filter engine and the similarity scorer.
package relation

import "strings"

// Relation is one of the five semantic relations a candidate matcher may
// assert between a source node and a target node.
type Relation int

const (
	// EQ marks the source and target as equivalent.
	EQ Relation = iota
	// MG marks the source as more general than the target.
	MG
	// LG marks the source as less general than the target.
	LG
	// DJ marks the source and target as disjoint.
	DJ
	// IDK is the absent/tombstone value. Writing IDK into a matrix deletes
	// the entry at that position.
	IDK
)

// precedence gives the total order from most (1) to least (5) precedent.
// Indexed directly by Relation, since the enum is dense and starts at 0.
var precedence = [...]int{
	EQ:  1,
	MG:  2,
	LG:  3,
	DJ:  4,
	IDK: 5,
}

// Precedence returns r's precedence number; lower is stronger. Any value
// outside the five known variants is treated as IDK-equivalent, i.e. the
// maximum (weakest) precedence.
func (r Relation) Precedence() int {
	if r < EQ || r > IDK {
		return precedence[IDK]
	}
	return precedence[r]
}

// String returns the conventional single-character symbol for r (the
// symbols ParseRelation accepts), used by diagnostic output.
func (r Relation) String() string {
	switch r {
	case EQ:
		return "="
	case MG:
		return ">"
	case LG:
		return "<"
	case DJ:
		return "!"
	case IDK:
		return "?"
	default:
		return "?"
	}
}

// ParseRelation maps the conventional test/tool symbols ("=", ">", "<",
// "!") onto their Relation. Anything else, including "?", parses as IDK.
func ParseRelation(symbol string) Relation {
	switch strings.TrimSpace(symbol) {
	case "=":
		return EQ
	case ">":
		return MG
	case "<":
		return LG
	case "!":
		return DJ
	default:
		return IDK
	}
}

// ComparePrecedence returns +1 if a is strictly more precedent than b
// (a's precedence number is smaller), -1 if b is strictly more precedent,
// and 0 if they are equally precedent.
func ComparePrecedence(a, b Relation) int {
	pa, pb := a.Precedence(), b.Precedence()
	switch {
	case pa < pb:
		return 1
	case pa > pb:
		return -1
	default:
		return 0
	}
}

// IsPrecedent reports whether a is strictly more precedent than b.
func IsPrecedent(a, b Relation) bool {
	return ComparePrecedence(a, b) == 1
}
