package profile

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"SProject/global"
	"SProject/middleware"
	midsec "SProject/middleware/security"
	"SProject/module/profile/service"
	"SProject/service/storage"
	errs "SProject/tools/errs"
)

type Handler struct {
	resolver *service.Resolver
	sessions *storage.SessionStore
}

func NewHandler(resolver *service.Resolver, sessions *storage.SessionStore) *Handler {
	return &Handler{resolver: resolver, sessions: sessions}
}

func (h *Handler) Register(r gin.IRoutes) {
	middleware.GET(r, "/profiles/me", h.HandlerMe, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/profiles/me", h.HandlerUpdateMe, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/profiles/:id", h.HandlerGet, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/handles/:handle", h.HandlerGetByHandle, middleware.RouteOpt{IsAuth: true})
}

// HandlerMe 首次调用完成懒建档，之后幂等返回同一行。
func (h *Handler) HandlerMe(c *gin.Context) {
	id, ok := midsec.CallerIdentity(c)
	if !ok {
		middleware.WriteErr(c, errs.ErrTokenNotExist)
		return
	}
	p, err := h.resolver.EnsureProfile(c.Request.Context(), id)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	// 建档结果回填 session 缓存；失败无所谓，下次请求走冷路径
	if hash := midsec.CallerTokenHash(c); hash != "" && h.sessions != nil {
		now := time.Now().UTC()
		_ = h.sessions.Ensure(c.Request.Context(), &global.UserSession{
			SessionID:  uuid.NewString(),
			Subject:    id.Subject,
			ProfileID:  p.ID,
			TokenHash:  hash,
			LoginTime:  now,
			ExpireTime: now.Add(global.Conf.Auth.SessionTTL),
		}, global.Conf.Auth.SessionTTL)
	}
	middleware.WriteData(c, p)
}

type updateReq struct {
	Handle    string  `json:"handle"`
	AvatarURL string  `json:"avatar_url"`
	Bio       *string `json:"bio"` // 缺省不动；显式传空串才清空
}

func (h *Handler) HandlerUpdateMe(c *gin.Context) {
	caller, err := Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	p, err := h.resolver.UpdateProfile(c.Request.Context(), caller.ID, service.UpdateParams{
		Handle:    req.Handle,
		AvatarURL: req.AvatarURL,
		Bio:       req.Bio,
	})
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, p)
}

func (h *Handler) HandlerGet(c *gin.Context) {
	p, err := h.resolver.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, p)
}

func (h *Handler) HandlerGetByHandle(c *gin.Context) {
	p, err := h.resolver.GetByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, p)
}
