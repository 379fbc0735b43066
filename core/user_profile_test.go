package core

import "testing"

func f64(v float64) *float64 { return &v }

func profileCatalog() []*Game {
	return []*Game{
		{ID: "g1", Slug: "first", Genres: NameList{"RPG", "Adventure"}, Rating: f64(4.5)},
		{ID: "g2", Genres: NameList{"Action"}},
		{ID: "g3", Genres: NameList{"RPG"}},
	}
}

func TestBuildUserProfile(t *testing.T) {
	interactions := []Interaction{
		{UserID: "u1", GameID: "first", Action: ActionLike}, // slug 引用
		{UserID: "u1", GameID: "g2", Action: ActionFavorite},
		{UserID: "u2", GameID: "g3", Action: ActionPlayed}, // 其他用户，应忽略
		{UserID: "u1", GameID: "ghost", Action: ActionLike},
	}

	p := BuildUserProfile("u1", interactions, profileCatalog())
	if !p.HasInteractions() || p.InteractionCount() != 3 {
		t.Fatalf("InteractionCount = %d, want 3", p.InteractionCount())
	}
	if !p.HasInteracted("g1") {
		t.Errorf("slug interaction should resolve to canonical id g1")
	}
	if !p.HasInteracted("g2") || !p.HasInteracted("ghost") {
		t.Errorf("Games = %v", p.Games)
	}
	if p.HasInteracted("g3") {
		t.Errorf("other user's interaction leaked into profile")
	}
	if p.ActionCounts[ActionLike] != 2 || p.ActionCounts[ActionFavorite] != 1 {
		t.Errorf("ActionCounts = %v", p.ActionCounts)
	}
}

func TestUserProfileTopGenres(t *testing.T) {
	interactions := []Interaction{
		{UserID: "u1", GameID: "g1", Action: ActionLike},     // RPG+1, Adventure+1
		{UserID: "u1", GameID: "g3", Action: ActionFavorite}, // RPG+1.5
		{UserID: "u1", GameID: "g2", Action: ActionLike},     // Action+1
	}
	p := BuildUserProfile("u1", interactions, profileCatalog())

	got := p.TopGenres(2)
	if len(got) != 2 || got[0] != "RPG" {
		t.Fatalf("TopGenres = %v, want RPG first", got)
	}
	// Action 与 Adventure 计数相同，按名称排序取 Action
	if got[1] != "Action" {
		t.Errorf("tie-break = %q, want Action", got[1])
	}

	if p.TopGenres(0) != nil {
		t.Errorf("TopGenres(0) should be nil")
	}
}

func TestUserProfileEmpty(t *testing.T) {
	p := BuildUserProfile("ghost", nil, profileCatalog())
	if p.HasInteractions() {
		t.Errorf("empty profile reports interactions")
	}
	if p.TopGenres(3) != nil {
		t.Errorf("empty profile should have no genres")
	}
}
