package core

import "context"

// DataProvider 是目录与交互数据访问的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store、上游服务适配器）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 训练与推理共用同一份快照语义，避免接口爆炸
//
// 使用场景：
//   - 训练：全量目录 + 全量交互构造训练集
//   - 推理：全量目录做候选，目标用户交互做过滤与路径决策
//
// 实现：
//   - store.ProviderAdapter 实现此接口（基于 core.Store 的 JSON 快照）
//   - 上游数据库/服务的适配器也可以实现此接口
type DataProvider interface {
	GameProvider
	InteractionProvider
}

// GameProvider 提供游戏目录快照。
type GameProvider interface {
	// GetGames 返回当前目录中的全部游戏
	GetGames(ctx context.Context) ([]*Game, error)
}

// InteractionProvider 提供用户交互快照。
type InteractionProvider interface {
	// GetUserInteractions 返回指定用户的全部交互记录
	GetUserInteractions(ctx context.Context, userID string) ([]Interaction, error)

	// GetAllInteractions 返回全量交互记录（训练用）
	GetAllInteractions(ctx context.Context) ([]Interaction, error)
}
