package dm

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"SProject/middleware"
	"SProject/module/dm/service"
	"SProject/module/profile"
	profilesvc "SProject/module/profile/service"
	errs "SProject/tools/errs"
)

type Handler struct {
	svc      *service.DMService
	resolver *profilesvc.Resolver
}

func NewHandler(svc *service.DMService, resolver *profilesvc.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.POST(r, "/conversations", h.HandlerCreate, auth)
	middleware.GET(r, "/conversations", h.HandlerList, auth)
	middleware.GET(r, "/conversations/:id/messages", h.HandlerMessages, auth)
	middleware.POST(r, "/conversations/:id/messages", h.HandlerSend, auth)
}

type createReq struct {
	PeerID string `json:"peer_id" binding:"required"`
}

type sendReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) HandlerCreate(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	conv, err := h.svc.CreateConversation(c.Request.Context(), caller.ID, req.PeerID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, conv)
}

func (h *Handler) HandlerList(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.ListConversations(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerMessages(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.svc.ListMessages(c.Request.Context(), caller.ID, c.Param("id"), limit)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerSend(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req sendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	m, err := h.svc.SendMessage(c.Request.Context(), caller.ID, c.Param("id"), req.Content)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, m)
}
