package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"SProject/global"
	errs "SProject/tools/errs"
	jwtlib "SProject/tools/security"
)

// —— context key ——
// 后续模块统一用这几个 key 读取调用方身份
const (
	CtxIdentityKey  = "callerIdentity"  // *security.Identity (tools/security)
	CtxTokenHashKey = "callerTokenHash" // string
)

type Options struct {
	JWT jwtlib.Options

	// 读取哪个请求头；默认 "Authorization"，兼容 Bearer 前缀
	HeaderToken string
}

func DefaultOptions() *Options {
	return &Options{
		JWT:         jwtlib.DefaultOptions(global.GetJwtSecret()),
		HeaderToken: "Authorization",
	}
}

// Middleware 校验令牌并把外部身份断言写入 context。
// 只负责“你是谁”；“你的 profile 是哪行”由 profile resolver 解决。
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[len("bearer "):])
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusOK, errs.ErrTokenNotExist)
			return
		}

		id, err := jwtlib.Verify(opts.JWT, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, errs.ErrTokenInvalid.WithDetail(err.Error()))
			return
		}

		c.Set(CtxIdentityKey, id)
		c.Set(CtxTokenHashKey, jwtlib.HashToken(token))
		c.Next()
	}
}

// CallerIdentity 从 context 取身份断言；没有说明路由没挂认证中间件。
func CallerIdentity(c *gin.Context) (*jwtlib.Identity, bool) {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*jwtlib.Identity)
	return id, ok
}

func CallerTokenHash(c *gin.Context) string {
	return c.GetString(CtxTokenHashKey)
}
