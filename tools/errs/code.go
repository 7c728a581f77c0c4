package errs

// 通用错误码
const (
	ServerInternalError = 500  // 服务器内部错误
	ArgsError           = 1001 // 输入参数错误
	NoPermissionError   = 1002 // 权限不足（写被拒绝；读场景返回空集而不是错误）
	RecordNotFoundError = 1003 // 记录不存在
	DuplicateKeyError   = 1004 // 唯一键冲突（调用方应按无害 no-op 处理）
	BadReferenceError   = 1005 // 外键引用不存在（bad request，不重试）
)

// 令牌相关
const (
	TokenExpiredError     = 1501
	TokenInvalidError     = 1503
	TokenNotExistError    = 1507
	IdentityMissingError  = 1508 // 已认证但 profile 尚未建档
)

// 关系/会话相关
const (
	SelfRelationError      = 1601 // 自己对自己发起关注/会话
	NotMutualFollowError   = 1602 // 非互关状态下创建会话
	RequestStateError      = 1603 // 请求状态机非法迁移
	NotParticipantError    = 1604 // 非会话参与者
	NotGroupMemberError    = 1605 // 非群成员
	NotGroupAdminError     = 1606 // 非群管理员
)
