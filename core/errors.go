package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），调用方按代码分流而不是解析消息
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 训练错误：INSUFFICIENT_DATA
//   - 推理降级：ARTIFACT_UNAVAILABLE, UNKNOWN_USER, SCORING_FAILURE
//   - 结果落库：PERSISTENCE_FAILURE
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INSUFFICIENT_DATA"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "dataset", "recommend"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（包括 %w 包装链中的），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 训练 / 推理错误代码
	ErrorCodeInsufficientData    = "INSUFFICIENT_DATA"    // 数据量不满足训练门槛，训练终止
	ErrorCodeArtifactUnavailable = "ARTIFACT_UNAVAILABLE" // 模型产物缺失或加载失败，推理走冷启动
	ErrorCodeUnknownUser         = "UNKNOWN_USER"         // 用户不在训练映射中，属预期情形而非故障
	ErrorCodeScoringFailure      = "SCORING_FAILURE"      // 打分阶段失败，推理走冷启动
	ErrorCodePersistenceFailure  = "PERSISTENCE_FAILURE"  // 推荐结果落库失败，结果本身仍然有效
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleFeature   = "feature"   // 特征模块
	ModuleIndex     = "index"     // 索引模块
	ModuleDataset   = "dataset"   // 训练集模块
	ModuleModel     = "model"     // 模型模块
	ModuleRecommend = "recommend" // 推荐引擎模块
	ModuleFeedback  = "feedback"  // 反馈模块
)

// 通用错误检查函数

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInsufficientData
	}
	return false
}

// IsArtifactUnavailable 检查错误是否为 ARTIFACT_UNAVAILABLE
func IsArtifactUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeArtifactUnavailable
	}
	return false
}

// IsUnknownUser 检查错误是否为 UNKNOWN_USER
func IsUnknownUser(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnknownUser
	}
	return false
}

// IsScoringFailure 检查错误是否为 SCORING_FAILURE
func IsScoringFailure(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeScoringFailure
	}
	return false
}

// IsPersistenceFailure 检查错误是否为 PERSISTENCE_FAILURE
func IsPersistenceFailure(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodePersistenceFailure
	}
	return false
}
