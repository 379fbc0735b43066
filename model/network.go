package model

import (
	"fmt"
	"math"
	"math/rand"
)

// 网络结构常量。拓扑固定，训练与推理共用。
const (
	EmbeddingDim  = 32                             // 用户/游戏嵌入维度
	FeatHiddenDim = 64                             // 内容特征分支的隐层宽度
	ConcatDim     = EmbeddingDim*2 + FeatHiddenDim // 128
	Hidden1Dim    = 128
	Hidden2Dim    = 64
	Hidden3Dim    = 32
	DropoutRate   = 0.3
)

// Network 是打分网络的全部可学习参数。
// 字段全部导出，随 JSON 产物持久化（见 serialize.go）。
// 训练期单协程写；训练完成后只读，可并发打分。
type Network struct {
	NumUsers    int `json:"numUsers"`
	NumGames    int `json:"numGames"`
	FeatureSize int `json:"featureSize"`

	UserEmb [][]float64 `json:"userEmb"` // [NumUsers][EmbeddingDim]
	GameEmb [][]float64 `json:"gameEmb"` // [NumGames][EmbeddingDim]

	FeatW [][]float64 `json:"featW"` // [FeatHiddenDim][FeatureSize]
	FeatB []float64   `json:"featB"`

	W1 [][]float64 `json:"w1"` // [Hidden1Dim][ConcatDim]
	B1 []float64   `json:"b1"`
	W2 [][]float64 `json:"w2"` // [Hidden2Dim][Hidden1Dim]
	B2 []float64   `json:"b2"`
	W3 [][]float64 `json:"w3"` // [Hidden3Dim][Hidden2Dim]
	B3 []float64   `json:"b3"`

	WOut []float64 `json:"wOut"` // [Hidden3Dim]
	BOut float64   `json:"bOut"`
}

// NewNetwork 创建并随机初始化一个网络。
// rng 由调用方注入并固定种子，保证同一份数据训练结果可复现。
func NewNetwork(numUsers, numGames, featureSize int, rng *rand.Rand) (*Network, error) {
	if numUsers <= 0 || numGames <= 0 || featureSize <= 0 {
		return nil, fmt.Errorf("model: invalid dimensions users=%d games=%d features=%d",
			numUsers, numGames, featureSize)
	}
	n := &Network{
		NumUsers:    numUsers,
		NumGames:    numGames,
		FeatureSize: featureSize,
	}
	n.UserEmb = randMatrix(numUsers, EmbeddingDim, 0.05, rng)
	n.GameEmb = randMatrix(numGames, EmbeddingDim, 0.05, rng)
	n.FeatW = glorotMatrix(FeatHiddenDim, featureSize, rng)
	n.FeatB = make([]float64, FeatHiddenDim)
	n.W1 = glorotMatrix(Hidden1Dim, ConcatDim, rng)
	n.B1 = make([]float64, Hidden1Dim)
	n.W2 = glorotMatrix(Hidden2Dim, Hidden1Dim, rng)
	n.B2 = make([]float64, Hidden2Dim)
	n.W3 = glorotMatrix(Hidden3Dim, Hidden2Dim, rng)
	n.B3 = make([]float64, Hidden3Dim)
	n.WOut = glorotVector(Hidden3Dim, rng)
	return n, nil
}

func (n *Network) Name() string { return "game_scorer" }

var _ Scorer = (*Network)(nil)

// Score 对单个 (用户, 游戏, 特征) 做前向推理，返回 [0,1] 分数。
// 推理路径不启用 dropout。
func (n *Network) Score(userIdx, gameIdx int, features []float64) (float64, error) {
	if userIdx < 0 || userIdx >= n.NumUsers {
		return 0, fmt.Errorf("model: user index %d out of range [0,%d)", userIdx, n.NumUsers)
	}
	if gameIdx < 0 || gameIdx >= n.NumGames {
		return 0, fmt.Errorf("model: game index %d out of range [0,%d)", gameIdx, n.NumGames)
	}
	if len(features) != n.FeatureSize {
		return 0, fmt.Errorf("model: feature vector length %d, want %d", len(features), n.FeatureSize)
	}
	act := n.forward(userIdx, gameIdx, features, nil, nil)
	return act.p, nil
}

// activations 缓存一次前向传播的中间量，训练期反向传播使用。
type activations struct {
	features []float64
	x        []float64 // concat 输入 [ConcatDim]
	aF, hF   []float64 // 特征分支 pre-act / relu
	a1, h1   []float64 // dense1
	a2, h2   []float64 // dense2
	a3, h3   []float64 // dense3
	z        float64   // 输出 pre-act
	p        float64   // sigmoid(z)
}

// forward 执行前向传播。mask1/mask2 是 dropout 的保留掩码
// （inverted dropout，保留位乘 1/keep），推理时传 nil 表示恒等。
func (n *Network) forward(userIdx, gameIdx int, features, mask1, mask2 []float64) *activations {
	act := &activations{features: features}

	act.aF = make([]float64, FeatHiddenDim)
	act.hF = make([]float64, FeatHiddenDim)
	for j := 0; j < FeatHiddenDim; j++ {
		sum := n.FeatB[j]
		row := n.FeatW[j]
		for k, f := range features {
			sum += row[k] * f
		}
		act.aF[j] = sum
		act.hF[j] = relu(sum)
	}

	act.x = make([]float64, ConcatDim)
	copy(act.x[:EmbeddingDim], n.UserEmb[userIdx])
	copy(act.x[EmbeddingDim:2*EmbeddingDim], n.GameEmb[gameIdx])
	copy(act.x[2*EmbeddingDim:], act.hF)

	act.a1, act.h1 = denseRelu(n.W1, n.B1, act.x)
	applyMask(act.h1, mask1)
	act.a2, act.h2 = denseRelu(n.W2, n.B2, act.h1)
	applyMask(act.h2, mask2)
	act.a3, act.h3 = denseRelu(n.W3, n.B3, act.h2)

	z := n.BOut
	for j, h := range act.h3 {
		z += n.WOut[j] * h
	}
	act.z = z
	act.p = sigmoid(z)
	return act
}

func denseRelu(w [][]float64, b []float64, in []float64) (pre, out []float64) {
	pre = make([]float64, len(w))
	out = make([]float64, len(w))
	for j := range w {
		sum := b[j]
		row := w[j]
		for k, v := range in {
			sum += row[k] * v
		}
		pre[j] = sum
		out[j] = relu(sum)
	}
	return pre, out
}

func applyMask(h, mask []float64) {
	if mask == nil {
		return
	}
	for j := range h {
		h[j] *= mask[j]
	}
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// randMatrix 均匀随机初始化 [-scale, scale)。嵌入表用小尺度起步。
func randMatrix(rows, cols int, scale float64, rng *rand.Rand) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return m
}

// glorotMatrix Glorot 均匀初始化：±sqrt(6/(fanIn+fanOut))。
func glorotMatrix(rows, cols int, rng *rand.Rand) [][]float64 {
	limit := math.Sqrt(6.0 / float64(rows+cols))
	return randMatrix(rows, cols, limit, rng)
}

func glorotVector(n int, rng *rand.Rand) []float64 {
	limit := math.Sqrt(6.0 / float64(n+1))
	v := make([]float64, n)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * limit
	}
	return v
}
