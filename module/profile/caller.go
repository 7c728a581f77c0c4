package profile

import (
	"github.com/gin-gonic/gin"

	midsec "SProject/middleware/security"
	"SProject/module/profile/model"
	"SProject/module/profile/service"
	errs "SProject/tools/errs"
)

// Current 解析当前请求的 profile 行；所有需要调用方身份的 handler 都从这走。
// 未认证 / 未建档分别返回对应业务码，handler 原样上抛。
func Current(c *gin.Context, r *service.Resolver) (*model.Profile, error) {
	id, ok := midsec.CallerIdentity(c)
	if !ok {
		return nil, errs.ErrTokenNotExist.Wrap()
	}
	return r.ResolveCached(c.Request.Context(), id.Subject, midsec.CallerTokenHash(c))
}
