package model

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/gamerec/core"
)

func testConfig() core.TrainingConfig {
	cfg := core.DefaultTrainingConfig()
	cfg.Epochs = 3
	cfg.BatchSize = 2
	cfg.Seed = 7
	return cfg
}

func testExamples(featureSize int) []Example {
	feat := func(fill float64) []float64 {
		v := make([]float64, featureSize)
		for i := range v {
			v[i] = fill
		}
		return v
	}
	return []Example{
		{UserIdx: 0, GameIdx: 0, Features: feat(1), Label: 1, Weight: 1.5},
		{UserIdx: 0, GameIdx: 1, Features: feat(0.2), Label: 0, Weight: 1},
		{UserIdx: 1, GameIdx: 1, Features: feat(0.8), Label: 1, Weight: 1},
		{UserIdx: 1, GameIdx: 2, Features: feat(0), Label: 0, Weight: 1},
		{UserIdx: 0, GameIdx: 2, Features: feat(0.5), Label: 0, Weight: 1},
	}
}

func TestFitScoreBounds(t *testing.T) {
	trainer := NewTrainer(testConfig(), zerolog.Nop())
	net, result, err := trainer.Fit(2, 3, 6, testExamples(6), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if result.Epochs != 3 {
		t.Errorf("Epochs = %d, want 3", result.Epochs)
	}

	feat := make([]float64, 6)
	for u := 0; u < 2; u++ {
		for g := 0; g < 3; g++ {
			score, err := net.Score(u, g, feat)
			if err != nil {
				t.Fatalf("Score(%d,%d): %v", u, g, err)
			}
			if score < 0 || score > 1 {
				t.Errorf("Score(%d,%d) = %v, out of [0,1]", u, g, score)
			}
		}
	}
}

func TestFitDeterminism(t *testing.T) {
	a, _, err := NewTrainer(testConfig(), zerolog.Nop()).Fit(2, 3, 6, testExamples(6), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b, _, err := NewTrainer(testConfig(), zerolog.Nop()).Fit(2, 3, 6, testExamples(6), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	da, err := a.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	db, err := b.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(da) != string(db) {
		t.Fatal("same seed and data produced different weights")
	}
}

func TestScoreValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, err := NewNetwork(2, 3, 6, rng)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}

	feat := make([]float64, 6)
	if _, err := net.Score(5, 0, feat); err == nil {
		t.Error("user index out of range not rejected")
	}
	if _, err := net.Score(0, -1, feat); err == nil {
		t.Error("negative game index not rejected")
	}
	if _, err := net.Score(0, 0, make([]float64, 4)); err == nil {
		t.Error("wrong feature length not rejected")
	}
}

func TestFitRejectsBadExamples(t *testing.T) {
	trainer := NewTrainer(testConfig(), zerolog.Nop())
	bad := []Example{{UserIdx: 9, GameIdx: 0, Features: make([]float64, 6), Label: 1, Weight: 1}}
	if _, _, err := trainer.Fit(2, 3, 6, bad, nil); err == nil {
		t.Error("out-of-range example not rejected")
	}
	if _, _, err := trainer.Fit(2, 3, 6, nil, nil); err == nil {
		t.Error("empty training set not rejected")
	}
}

func TestNetworkSerializeRoundTrip(t *testing.T) {
	trainer := NewTrainer(testConfig(), zerolog.Nop())
	net, _, err := trainer.Fit(2, 3, 6, testExamples(6), nil)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	data, err := net.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := UnmarshalNetwork(data)
	if err != nil {
		t.Fatalf("UnmarshalNetwork: %v", err)
	}

	// 反序列化后的网络打出完全相同的分数
	feat := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	want, err := net.Score(1, 2, feat)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	got, err := back.Score(1, 2, feat)
	if err != nil {
		t.Fatalf("Score after round-trip: %v", err)
	}
	if got != want {
		t.Errorf("round-trip score = %v, want %v", got, want)
	}
}

func TestUnmarshalNetworkRejectsCorruption(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, err := NewNetwork(2, 3, 6, rng)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	net.W1 = net.W1[:10] // 截断权重矩阵

	data, err := net.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := UnmarshalNetwork(data); err == nil {
		t.Error("truncated weights not rejected")
	}

	if _, err := UnmarshalNetwork([]byte(`{"version":99,"network":{}}`)); err == nil {
		t.Error("unsupported version not rejected")
	}
	if _, err := UnmarshalNetwork([]byte(`not json`)); err == nil {
		t.Error("malformed document not rejected")
	}
}
