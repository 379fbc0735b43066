package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func seedCatalog(t *testing.T, st core.Store) []*core.Game {
	t.Helper()
	games := []*core.Game{
		{ID: "g1", Name: "First", Genres: core.NameList{"RPG"}},
		{ID: "g2", Name: "Second", Genres: core.NameList{"Action"}},
	}
	data, err := json.Marshal(games)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if err := st.Set(context.Background(), DefaultCatalogKey, data); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}
	return games
}

func TestProviderAdapterCatalog(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	seedCatalog(t, st)

	p := NewProviderAdapter(st)
	games, err := p.GetGames(context.Background())
	if err != nil {
		t.Fatalf("GetGames: %v", err)
	}
	if len(games) != 2 || games[0].ID != "g1" || games[1].Name != "Second" {
		t.Errorf("GetGames = %v", games)
	}
}

func TestProviderAdapterCatalogMissing(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	p := NewProviderAdapter(st)
	if _, err := p.GetGames(context.Background()); !core.IsStoreNotFound(err) {
		t.Errorf("GetGames on empty store = %v, want NOT_FOUND", err)
	}
}

func TestProviderAdapterUserInteractionsKey(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	own := []core.Interaction{{UserID: "u1", GameID: "g1", Action: core.ActionLike}}
	data, _ := json.Marshal(own)
	st.Set(ctx, DefaultUserInteractionsKey+":u1", data)

	// 全量快照里放一条干扰数据，确认不会走回退路径
	all := []core.Interaction{{UserID: "u1", GameID: "g9", Action: core.ActionPlayed}}
	allData, _ := json.Marshal(all)
	st.Set(ctx, DefaultInteractionsKey, allData)

	p := NewProviderAdapter(st)
	got, err := p.GetUserInteractions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserInteractions: %v", err)
	}
	if len(got) != 1 || got[0].GameID != "g1" {
		t.Errorf("GetUserInteractions = %v, want own key entry", got)
	}
}

func TestProviderAdapterUserInteractionsFallback(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	all := []core.Interaction{
		{UserID: "u1", GameID: "g1", Action: core.ActionLike},
		{UserID: "u2", GameID: "g2", Action: core.ActionPlayed},
		{UserID: "u1", GameID: "g3", Action: core.ActionFavorite},
	}
	data, _ := json.Marshal(all)
	st.Set(ctx, DefaultInteractionsKey, data)

	p := NewProviderAdapter(st)
	got, err := p.GetUserInteractions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserInteractions: %v", err)
	}
	if len(got) != 2 || got[0].GameID != "g1" || got[1].GameID != "g3" {
		t.Errorf("fallback filter = %v, want u1 entries only", got)
	}
}

func TestProviderAdapterUserInteractionsAbsent(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()

	p := NewProviderAdapter(st)
	got, err := p.GetUserInteractions(context.Background(), "ghost")
	if err != nil {
		t.Errorf("both keys missing should not error, got %v", err)
	}
	if got != nil {
		t.Errorf("want nil interactions, got %v", got)
	}
}
