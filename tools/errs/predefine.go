package errs

var (
	ErrInternalServer = NewCodeError(ServerInternalError, "ServerInternalError")
	ErrArgs           = NewCodeError(ArgsError, "ArgsError")

	// 授权失败：写操作返回它；读操作永远返回空集，不返回错误。
	ErrNoPermission = NewCodeError(NoPermissionError, "NoPermissionError")

	ErrRecordNotFound = NewCodeError(RecordNotFoundError, "RecordNotFoundError")

	// 唯一键冲突：重复点赞 / 重复申请 / 重复入群。
	// 按规范这是可恢复的 no-op，service 层大多直接吞掉。
	ErrDuplicateKey = NewCodeError(DuplicateKeyError, "DuplicateKeyError")

	// 外键引用不存在：硬失败，按 bad request 返回，不做重试。
	ErrBadReference = NewCodeError(BadReferenceError, "BadReferenceError")

	ErrTokenExpired    = NewCodeError(TokenExpiredError, "TokenExpiredError")
	ErrTokenInvalid    = NewCodeError(TokenInvalidError, "TokenInvalidError")
	ErrTokenNotExist   = NewCodeError(TokenNotExistError, "TokenNotExistError")
	ErrIdentityMissing = NewCodeError(IdentityMissingError, "IdentityMissingError")

	ErrSelfRelation    = NewCodeError(SelfRelationError, "SelfRelationError")
	ErrNotMutualFollow = NewCodeError(NotMutualFollowError, "NotMutualFollowError")
	ErrRequestState    = NewCodeError(RequestStateError, "RequestStateError")
	ErrNotParticipant  = NewCodeError(NotParticipantError, "NotParticipantError")
	ErrNotGroupMember  = NewCodeError(NotGroupMemberError, "NotGroupMemberError")
	ErrNotGroupAdmin   = NewCodeError(NotGroupAdminError, "NotGroupAdminError")
)
