package group

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"SProject/middleware"
	"SProject/module/group/service"
	"SProject/module/profile"
	profilesvc "SProject/module/profile/service"
	errs "SProject/tools/errs"
)

type Handler struct {
	svc      *service.GroupService
	resolver *profilesvc.Resolver
}

func NewHandler(svc *service.GroupService, resolver *profilesvc.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.POST(r, "/groups", h.HandlerCreate, auth)
	middleware.GET(r, "/groups", h.HandlerMine, auth)
	middleware.GET(r, "/groups/:id", h.HandlerGet, auth)
	middleware.GET(r, "/groups/:id/members", h.HandlerMembers, auth)
	middleware.POST(r, "/groups/:id/members", h.HandlerAddMember, auth)
	middleware.GET(r, "/groups/:id/messages", h.HandlerMessages, auth)
	middleware.POST(r, "/groups/:id/messages", h.HandlerSend, auth)
}

type createReq struct {
	Name string `json:"name" binding:"required"`
}

type addMemberReq struct {
	ProfileID string `json:"profile_id" binding:"required"`
	Role      string `json:"role"`
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
	g, err := h.svc.CreateGroup(c.Request.Context(), caller.ID, req.Name)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, g)
}

func (h *Handler) HandlerMine(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.MyGroups(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerGet(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	g, err := h.svc.GetGroup(c.Request.Context(), caller.ID, c.Param("id"))
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if g == nil {
		// 不可见与不存在同样回法,不泄露群是否存在
		middleware.WriteErr(c, errs.ErrRecordNotFound)
		return
	}
	middleware.WriteData(c, g)
}

func (h *Handler) HandlerMembers(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.ListMembers(c.Request.Context(), caller.ID, c.Param("id"))
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerAddMember(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.AddMember(c.Request.Context(), caller.ID, c.Param("id"), req.ProfileID, req.Role); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
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
