package relation

import "testing"

func TestPrecedenceOrder(t *testing.T) {
	order := []Relation{EQ, MG, LG, DJ, IDK}
	for i := 0; i < len(order)-1; i++ {
		if !IsPrecedent(order[i], order[i+1]) {
			t.Errorf("expected %v to be more precedent than %v", order[i], order[i+1])
		}
	}
}

func TestComparePrecedenceSymmetry(t *testing.T) {
	tests := []struct {
		a, b Relation
		want int
	}{
		{EQ, EQ, 0},
		{EQ, MG, 1},
		{MG, EQ, -1},
		{DJ, IDK, 1},
		{IDK, DJ, -1},
	}
	for _, tt := range tests {
		if got := ComparePrecedence(tt.a, tt.b); got != tt.want {
			t.Errorf("ComparePrecedence(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestUnrecognisedRelationIsIDKEquivalent(t *testing.T) {
	var bogus Relation = 99
	if bogus.Precedence() != IDK.Precedence() {
		t.Errorf("expected unrecognised relation to have IDK precedence, got %d", bogus.Precedence())
	}
	if IsPrecedent(bogus, IDK) {
		t.Error("unrecognised relation should not be more precedent than IDK")
	}
}

func TestParseRelation(t *testing.T) {
	tests := map[string]Relation{
		"=": EQ,
		">": MG,
		"<": LG,
		"!": DJ,
		"?": IDK,
		"":  IDK,
		"x": IDK,
	}
	for sym, want := range tests {
		if got := ParseRelation(sym); got != want {
			t.Errorf("ParseRelation(%q) = %v, want %v", sym, got, want)
		}
	}
}

func TestIsPrecedentStrict(t *testing.T) {
	if IsPrecedent(EQ, EQ) {
		t.Error("a relation should not be strictly more precedent than itself")
	}
}
