package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/rushteam/gamerec/core"
)

// Adam 优化器超参数（除学习率外不开放配置）。
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
	lossEps   = 1e-7 // BCE 对数截断
)

// Trainer 执行离线训练：小批量 + Adam + 带权二元交叉熵。
// 训练是单协程批处理，由运维触发，不与服务进程共享状态。
type Trainer struct {
	cfg core.TrainingConfig
	log zerolog.Logger
}

// NewTrainer 创建训练器。cfg 中的零值字段会被默认值填补。
func NewTrainer(cfg core.TrainingConfig, logger zerolog.Logger) *Trainer {
	return &Trainer{cfg: cfg.Sanitized(), log: logger}
}

// TrainResult 是一次训练的摘要。
type TrainResult struct {
	Epochs    int
	TrainLoss float64 // 末轮平均训练损失
	ValLoss   float64 // 末轮验证损失（无验证集时为 0）
}

// Fit 随机初始化网络并在样本集上训练。
// 同一 (cfg.Seed, 样本) 输入产出完全一致的参数。
func (t *Trainer) Fit(numUsers, numGames, featureSize int, train, val []Example) (*Network, *TrainResult, error) {
	if len(train) == 0 {
		return nil, nil, fmt.Errorf("model: empty training set")
	}
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	net, err := NewNetwork(numUsers, numGames, featureSize, rng)
	if err != nil {
		return nil, nil, err
	}
	for i, ex := range train {
		if err := t.checkExample(net, &ex); err != nil {
			return nil, nil, fmt.Errorf("model: train example %d: %w", i, err)
		}
	}
	for i, ex := range val {
		if err := t.checkExample(net, &ex); err != nil {
			return nil, nil, fmt.Errorf("model: validation example %d: %w", i, err)
		}
	}

	opt := newAdamState(net)
	examples := make([]Example, len(train))
	copy(examples, train)

	result := &TrainResult{Epochs: t.cfg.Epochs}
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(examples), func(i, j int) {
			examples[i], examples[j] = examples[j], examples[i]
		})

		epochLoss := 0.0
		for start := 0; start < len(examples); start += t.cfg.BatchSize {
			end := start + t.cfg.BatchSize
			if end > len(examples) {
				end = len(examples)
			}
			epochLoss += t.trainBatch(net, opt, examples[start:end], rng)
		}
		result.TrainLoss = epochLoss / float64(len(examples))

		if len(val) > 0 {
			result.ValLoss = t.Evaluate(net, val)
		}
		t.log.Debug().
			Int("epoch", epoch).
			Float64("train_loss", result.TrainLoss).
			Float64("val_loss", result.ValLoss).
			Msg("训练轮次完成")
	}

	t.log.Info().
		Int("epochs", result.Epochs).
		Int("train_examples", len(train)).
		Int("val_examples", len(val)).
		Float64("train_loss", result.TrainLoss).
		Float64("val_loss", result.ValLoss).
		Msg("模型训练完成")
	return net, result, nil
}

// Evaluate 返回样本集上的平均带权 BCE 损失（推理路径，无 dropout）。
func (t *Trainer) Evaluate(net *Network, examples []Example) float64 {
	if len(examples) == 0 {
		return 0
	}
	total := 0.0
	for _, ex := range examples {
		act := net.forward(ex.UserIdx, ex.GameIdx, ex.Features, nil, nil)
		total += bceLoss(act.p, ex.Label, exampleWeight(&ex))
	}
	return total / float64(len(examples))
}

func (t *Trainer) checkExample(net *Network, ex *Example) error {
	if ex.UserIdx < 0 || ex.UserIdx >= net.NumUsers {
		return fmt.Errorf("user index %d out of range [0,%d)", ex.UserIdx, net.NumUsers)
	}
	if ex.GameIdx < 0 || ex.GameIdx >= net.NumGames {
		return fmt.Errorf("game index %d out of range [0,%d)", ex.GameIdx, net.NumGames)
	}
	if len(ex.Features) != net.FeatureSize {
		return fmt.Errorf("feature length %d, want %d", len(ex.Features), net.FeatureSize)
	}
	return nil
}

// trainBatch 对一个小批量做前向 + 反向 + Adam 更新，返回批内损失之和。
func (t *Trainer) trainBatch(net *Network, opt *adamState, batch []Example, rng *rand.Rand) float64 {
	g := newGradients(net)
	batchLoss := 0.0
	invN := 1.0 / float64(len(batch))

	for i := range batch {
		ex := &batch[i]
		w := exampleWeight(ex)
		mask1 := dropoutMask(Hidden1Dim, DropoutRate, rng)
		mask2 := dropoutMask(Hidden2Dim, DropoutRate, rng)

		act := net.forward(ex.UserIdx, ex.GameIdx, ex.Features, mask1, mask2)
		batchLoss += bceLoss(act.p, ex.Label, w)

		// sigmoid + BCE 的组合梯度：dL/dz = w * (p - y)
		dz := w * (act.p - ex.Label) * invN
		backprop(net, g, act, ex.UserIdx, ex.GameIdx, dz, mask1, mask2)
	}

	opt.step(net, g, t.cfg.LearningRate)
	return batchLoss
}

// backprop 把单样本梯度累加进 g。act.h1/h2 已含 dropout 掩码。
func backprop(net *Network, g *gradients, act *activations, userIdx, gameIdx int, dz float64, mask1, mask2 []float64) {
	dh3 := make([]float64, Hidden3Dim)
	for j := 0; j < Hidden3Dim; j++ {
		g.wOut[j] += dz * act.h3[j]
		dh3[j] = dz * net.WOut[j]
	}
	g.bOut += dz

	da3 := reluGrad(dh3, act.a3)
	dh2 := backpropDense(net.W3, g.w3, g.b3, da3, act.h2)
	maskGrad(dh2, mask2)

	da2 := reluGrad(dh2, act.a2)
	dh1 := backpropDense(net.W2, g.w2, g.b2, da2, act.h1)
	maskGrad(dh1, mask1)

	da1 := reluGrad(dh1, act.a1)
	dx := backpropDense(net.W1, g.w1, g.b1, da1, act.x)

	for k := 0; k < EmbeddingDim; k++ {
		g.userEmb[userIdx][k] += dx[k]
		g.gameEmb[gameIdx][k] += dx[EmbeddingDim+k]
	}

	dhF := dx[2*EmbeddingDim:]
	daF := reluGrad(dhF, act.aF)
	backpropDense(net.FeatW, g.featW, g.featB, daF, act.features)
}

// backpropDense 累加 dW/dB 并返回对输入的梯度。
func backpropDense(w, gw [][]float64, gb, dOut, in []float64) []float64 {
	dIn := make([]float64, len(in))
	for j, d := range dOut {
		if d == 0 {
			continue
		}
		gb[j] += d
		row := w[j]
		grow := gw[j]
		for k, v := range in {
			grow[k] += d * v
			dIn[k] += row[k] * d
		}
	}
	return dIn
}

func reluGrad(dOut, pre []float64) []float64 {
	out := make([]float64, len(dOut))
	for j := range dOut {
		if pre[j] > 0 {
			out[j] = dOut[j]
		}
	}
	return out
}

func maskGrad(d, mask []float64) {
	if mask == nil {
		return
	}
	for j := range d {
		d[j] *= mask[j]
	}
}

// dropoutMask 生成 inverted dropout 掩码：保留位为 1/keep，丢弃位为 0。
func dropoutMask(n int, rate float64, rng *rand.Rand) []float64 {
	keep := 1 - rate
	mask := make([]float64, n)
	for j := range mask {
		if rng.Float64() < keep {
			mask[j] = 1 / keep
		}
	}
	return mask
}

func bceLoss(p, y, w float64) float64 {
	p = math.Min(math.Max(p, lossEps), 1-lossEps)
	return -w * (y*math.Log(p) + (1-y)*math.Log(1-p))
}

func exampleWeight(ex *Example) float64 {
	if ex.Weight <= 0 {
		return 1
	}
	return ex.Weight
}

// gradients 是一个批次的梯度累加缓冲，形状与 Network 一一对应。
type gradients struct {
	userEmb, gameEmb  [][]float64
	featW, w1, w2, w3 [][]float64
	featB, b1, b2, b3 []float64
	wOut              []float64
	bOut              float64
}

func newGradients(net *Network) *gradients {
	return &gradients{
		userEmb: zeroLike(net.UserEmb),
		gameEmb: zeroLike(net.GameEmb),
		featW:   zeroLike(net.FeatW),
		w1:      zeroLike(net.W1),
		w2:      zeroLike(net.W2),
		w3:      zeroLike(net.W3),
		featB:   make([]float64, len(net.FeatB)),
		b1:      make([]float64, len(net.B1)),
		b2:      make([]float64, len(net.B2)),
		b3:      make([]float64, len(net.B3)),
		wOut:    make([]float64, len(net.WOut)),
	}
}

func zeroLike(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i := range m {
		out[i] = make([]float64, len(m[i]))
	}
	return out
}

// adamState 维护每个参数张量的一阶/二阶矩估计。
type adamState struct {
	t int // 步数（偏差修正用）

	mUserEmb, vUserEmb [][]float64
	mGameEmb, vGameEmb [][]float64
	mFeatW, vFeatW     [][]float64
	mW1, vW1           [][]float64
	mW2, vW2           [][]float64
	mW3, vW3           [][]float64
	mFeatB, vFeatB     []float64
	mB1, vB1           []float64
	mB2, vB2           []float64
	mB3, vB3           []float64
	mWOut, vWOut       []float64
	mBOut, vBOut       float64
}

func newAdamState(net *Network) *adamState {
	return &adamState{
		mUserEmb: zeroLike(net.UserEmb), vUserEmb: zeroLike(net.UserEmb),
		mGameEmb: zeroLike(net.GameEmb), vGameEmb: zeroLike(net.GameEmb),
		mFeatW: zeroLike(net.FeatW), vFeatW: zeroLike(net.FeatW),
		mW1: zeroLike(net.W1), vW1: zeroLike(net.W1),
		mW2: zeroLike(net.W2), vW2: zeroLike(net.W2),
		mW3: zeroLike(net.W3), vW3: zeroLike(net.W3),
		mFeatB: make([]float64, len(net.FeatB)), vFeatB: make([]float64, len(net.FeatB)),
		mB1: make([]float64, len(net.B1)), vB1: make([]float64, len(net.B1)),
		mB2: make([]float64, len(net.B2)), vB2: make([]float64, len(net.B2)),
		mB3: make([]float64, len(net.B3)), vB3: make([]float64, len(net.B3)),
		mWOut: make([]float64, len(net.WOut)), vWOut: make([]float64, len(net.WOut)),
	}
}

// step 按 Adam 规则应用一批梯度。
func (s *adamState) step(net *Network, g *gradients, lr float64) {
	s.t++
	c1 := 1 - math.Pow(adamBeta1, float64(s.t))
	c2 := 1 - math.Pow(adamBeta2, float64(s.t))

	adamMatrix(net.UserEmb, g.userEmb, s.mUserEmb, s.vUserEmb, lr, c1, c2)
	adamMatrix(net.GameEmb, g.gameEmb, s.mGameEmb, s.vGameEmb, lr, c1, c2)
	adamMatrix(net.FeatW, g.featW, s.mFeatW, s.vFeatW, lr, c1, c2)
	adamMatrix(net.W1, g.w1, s.mW1, s.vW1, lr, c1, c2)
	adamMatrix(net.W2, g.w2, s.mW2, s.vW2, lr, c1, c2)
	adamMatrix(net.W3, g.w3, s.mW3, s.vW3, lr, c1, c2)
	adamVector(net.FeatB, g.featB, s.mFeatB, s.vFeatB, lr, c1, c2)
	adamVector(net.B1, g.b1, s.mB1, s.vB1, lr, c1, c2)
	adamVector(net.B2, g.b2, s.mB2, s.vB2, lr, c1, c2)
	adamVector(net.B3, g.b3, s.mB3, s.vB3, lr, c1, c2)
	adamVector(net.WOut, g.wOut, s.mWOut, s.vWOut, lr, c1, c2)

	s.mBOut = adamBeta1*s.mBOut + (1-adamBeta1)*g.bOut
	s.vBOut = adamBeta2*s.vBOut + (1-adamBeta2)*g.bOut*g.bOut
	net.BOut -= lr * (s.mBOut / c1) / (math.Sqrt(s.vBOut/c2) + adamEps)
}

func adamMatrix(p, g, m, v [][]float64, lr, c1, c2 float64) {
	for i := range p {
		adamVector(p[i], g[i], m[i], v[i], lr, c1, c2)
	}
}

func adamVector(p, g, m, v []float64, lr, c1, c2 float64) {
	for j := range p {
		m[j] = adamBeta1*m[j] + (1-adamBeta1)*g[j]
		v[j] = adamBeta2*v[j] + (1-adamBeta2)*g[j]*g[j]
		p[j] -= lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + adamEps)
	}
}
