package index

import (
	"testing"

	"github.com/rushteam/gamerec/core"
)

func TestBuildFirstSeenOrder(t *testing.T) {
	ix := Build([]string{"g3", "g1", "g3", "g2", "g1"})

	if got := ix.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	want := []string{"g3", "g1", "g2"}
	for i, id := range want {
		got, ok := ix.IDOf(i)
		if !ok || got != id {
			t.Errorf("IDOf(%d) = (%q, %v), want (%q, true)", i, got, ok, id)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	ids := []string{"u1", "u2", "u3", "u4"}
	ix := Build(ids)

	for _, id := range ids {
		i, ok := ix.IndexOf(id)
		if !ok {
			t.Fatalf("IndexOf(%q) missing", id)
		}
		back, ok := ix.IDOf(i)
		if !ok || back != id {
			t.Errorf("IDOf(IndexOf(%q)) = %q, want %q", id, back, id)
		}
	}
	for i := 0; i < ix.Len(); i++ {
		id, ok := ix.IDOf(i)
		if !ok {
			t.Fatalf("IDOf(%d) missing", i)
		}
		back, ok := ix.IndexOf(id)
		if !ok || back != i {
			t.Errorf("IndexOf(IDOf(%d)) = %d, want %d", i, back, i)
		}
	}
}

func TestIndexOfMissing(t *testing.T) {
	ix := Build([]string{"g1"})
	if _, ok := ix.IndexOf("nope"); ok {
		t.Error("IndexOf unknown id should return ok=false")
	}
	if _, ok := ix.IDOf(5); ok {
		t.Error("IDOf out-of-range should return ok=false")
	}
	if _, ok := ix.IDOf(-1); ok {
		t.Error("IDOf negative should return ok=false")
	}
}

func TestAddIdempotent(t *testing.T) {
	ix := New()
	a := ix.Add("g1")
	b := ix.Add("g2")
	c := ix.Add("g1")
	if a != c {
		t.Errorf("Add(g1) twice = %d then %d, want same index", a, c)
	}
	if a == b {
		t.Errorf("distinct ids share index %d", a)
	}
}

func TestFromIDsRejectsDuplicates(t *testing.T) {
	if _, err := FromIDs([]string{"g1", "g2", "g1"}); err == nil {
		t.Fatal("FromIDs with duplicate ids should fail")
	}
	ix, err := FromIDs([]string{"g1", "g2"})
	if err != nil {
		t.Fatalf("FromIDs: %v", err)
	}
	if i, ok := ix.IndexOf("g2"); !ok || i != 1 {
		t.Errorf("IndexOf(g2) = (%d, %v), want (1, true)", i, ok)
	}
}

func TestResolverSlugAlias(t *testing.T) {
	games := []*core.Game{
		{ID: "3498", Slug: "gta-v", Name: "Grand Theft Auto V"},
		{ID: "3328", Slug: "the-witcher-3", Name: "The Witcher 3"},
		{ID: "noslug"},
	}
	r := ResolverForGames(games)

	cases := []struct {
		in       string
		want     string
		resolved bool
	}{
		{"3498", "3498", true},
		{"gta-v", "3498", true},
		{"the-witcher-3", "3328", true},
		{"noslug", "noslug", true},
		{"unknown-game", "unknown-game", false},
	}
	for _, c := range cases {
		got, ok := r.Resolve(c.in)
		if got != c.want || ok != c.resolved {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", c.in, got, ok, c.want, c.resolved)
		}
	}
}

func TestResolveIndexCollapsesAliases(t *testing.T) {
	games := []*core.Game{
		{ID: "g1", Slug: "alpha"},
		{ID: "g2", Slug: "beta"},
	}
	r := ResolverForGames(games)
	ix := Build([]string{"g1", "g2"})

	byID, ok1 := r.ResolveIndex(ix, "g1")
	bySlug, ok2 := r.ResolveIndex(ix, "alpha")
	if !ok1 || !ok2 {
		t.Fatal("ResolveIndex should find both forms")
	}
	if byID != bySlug {
		t.Errorf("id and slug resolve to different indices: %d vs %d", byID, bySlug)
	}

	if _, ok := r.ResolveIndex(ix, "missing"); ok {
		t.Error("ResolveIndex unknown id should return ok=false")
	}
}

func TestResolverKeepsFirstAliasOwner(t *testing.T) {
	r := NewResolver()
	r.Add("g1", "shared")
	r.Add("g2", "shared")
	if got, _ := r.Resolve("shared"); got != "g1" {
		t.Errorf("Resolve(shared) = %q, want g1", got)
	}
}
