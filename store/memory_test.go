package store

import (
	"context"
	"testing"

	"github.com/rushteam/gamerec/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	if _, err := st.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get(missing) = %v, want NOT_FOUND", err)
	}

	if err := st.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := st.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get(k) = (%q, %v), want (v, nil)", got, err)
	}

	if err := st.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("Get after delete = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	kvs := map[string][]byte{"a": []byte("1"), "b": []byte("2")}
	if err := st.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("BatchSet: %v", err)
	}

	got, err := st.BatchGet(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
}

func TestMemoryStoreZSet(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	st.ZAdd(ctx, "z", 3, "mid")
	st.ZAdd(ctx, "z", 9, "top")
	st.ZAdd(ctx, "z", 1, "low")

	members, err := st.ZRange(ctx, "z", 0, 1)
	if err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	if len(members) != 2 || members[0] != "top" || members[1] != "mid" {
		t.Errorf("ZRange = %v, want [top mid]", members)
	}

	score, err := st.ZScore(ctx, "z", "top")
	if err != nil || score != 9 {
		t.Errorf("ZScore = (%v, %v), want (9, nil)", score, err)
	}
	if _, err := st.ZScore(ctx, "z", "ghost"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore(ghost) = %v, want NOT_FOUND", err)
	}
}

func TestMemoryStoreHash(t *testing.T) {
	st := NewMemoryStore()
	defer st.Close()
	ctx := context.Background()

	st.HSet(ctx, "features:game", "g1", []byte(`{"rating":4.5}`))
	got, err := st.HGet(ctx, "features:game", "g1")
	if err != nil || string(got) != `{"rating":4.5}` {
		t.Errorf("HGet = (%q, %v)", got, err)
	}

	all, err := st.HGetAll(ctx, "features:game")
	if err != nil || len(all) != 1 {
		t.Errorf("HGetAll = (%v, %v), want one field", all, err)
	}
}
