package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/gamerec/core"
)

// flakySource 前 failures 次 Fetch 失败，之后返回真实产物。
type flakySource struct {
	failures int
	artifact *Artifact
	fetches  int
}

func (s *flakySource) Name() string { return "flaky" }

func (s *flakySource) Fetch(_ context.Context) (*Artifact, error) {
	s.fetches++
	if s.fetches <= s.failures {
		return nil, errors.New("transient fetch failure")
	}
	return s.artifact, nil
}

func trainedArtifact(t *testing.T) *Artifact {
	t.Helper()

	cfg := core.DefaultTrainingConfig()
	cfg.MinGames = 3
	cfg.MinInteractions = 2
	cfg.MinUsers = 1
	cfg.Epochs = 2
	cfg.BatchSize = 2

	provider := &staticProvider{games: testCatalog(), interactions: testInteractions()}
	out, err := Train(context.Background(), provider, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	weights, err := out.Network.Marshal()
	if err != nil {
		t.Fatalf("marshal weights: %v", err)
	}
	metadata, err := out.Metadata.Marshal()
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return &Artifact{Weights: weights, Metadata: metadata}
}

func TestHandleFailedLoadIsRetryable(t *testing.T) {
	src := &flakySource{failures: 1, artifact: trainedArtifact(t)}
	h := NewHandle(src, zerolog.Nop())
	ctx := context.Background()

	err := h.Load(ctx)
	if !core.IsArtifactUnavailable(err) {
		t.Fatalf("first Load = %v, want ARTIFACT_UNAVAILABLE", err)
	}
	if h.IsLoaded() {
		t.Fatalf("failed load must not cache")
	}

	if err := h.Load(ctx); err != nil {
		t.Fatalf("retry Load: %v", err)
	}
	if !h.IsLoaded() || h.Scorer() == nil || h.Metadata() == nil {
		t.Errorf("handle not ready after successful load")
	}
}

func TestHandleLoadIsIdempotent(t *testing.T) {
	src := &flakySource{artifact: trainedArtifact(t)}
	h := NewHandle(src, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := h.Load(ctx); err != nil {
			t.Fatalf("Load #%d: %v", i, err)
		}
	}
	if src.fetches != 1 {
		t.Errorf("fetches = %d, want 1", src.fetches)
	}
}

func TestHandleInvalidate(t *testing.T) {
	src := &flakySource{artifact: trainedArtifact(t)}
	h := NewHandle(src, zerolog.Nop())
	ctx := context.Background()

	if err := h.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	h.Invalidate()
	if h.IsLoaded() || h.Scorer() != nil {
		t.Fatalf("Invalidate should drop cached artifact")
	}

	if err := h.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if src.fetches != 2 {
		t.Errorf("fetches = %d, want 2 after invalidate", src.fetches)
	}
}

func TestHandleRejectsMismatchedArtifact(t *testing.T) {
	art := trainedArtifact(t)

	// 空元数据无法通过校验，与权重不配套，必须拒绝加载
	h := NewHandle(&flakySource{artifact: &Artifact{Weights: art.Weights, Metadata: []byte(`{}`)}}, zerolog.Nop())
	err := h.Load(context.Background())
	if !core.IsArtifactUnavailable(err) {
		t.Fatalf("mismatched artifact Load = %v, want ARTIFACT_UNAVAILABLE", err)
	}
}

func TestHandleNoSource(t *testing.T) {
	h := NewHandle(nil, zerolog.Nop())
	if err := h.Load(context.Background()); !core.IsArtifactUnavailable(err) {
		t.Errorf("Load without source = %v, want ARTIFACT_UNAVAILABLE", err)
	}
}
