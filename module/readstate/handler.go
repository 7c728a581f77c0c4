package readstate

import (
	"time"

	"github.com/gin-gonic/gin"

	"SProject/middleware"
	"SProject/module/profile"
	profilesvc "SProject/module/profile/service"
	"SProject/module/readstate/service"
	errs "SProject/tools/errs"
)

type Handler struct {
	svc      *service.ReadStateService
	resolver *profilesvc.Resolver
}

func NewHandler(svc *service.ReadStateService, resolver *profilesvc.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.POST(r, "/conversations/:id/read", h.HandlerMarkConversation, auth)
	middleware.POST(r, "/groups/:id/read", h.HandlerMarkGroup, auth)
	middleware.GET(r, "/unread", h.HandlerUnread, auth)
}

type markReq struct {
	// 缺省按服务端当前时间落读点
	At time.Time `json:"at"`
}

func (h *Handler) HandlerMarkConversation(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req markReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.MarkConversationRead(c.Request.Context(), caller.ID, c.Param("id"), req.At); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerMarkGroup(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req markReq
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.MarkGroupRead(c.Request.Context(), caller.ID, c.Param("id"), req.At); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerUnread(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.Unread(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}
