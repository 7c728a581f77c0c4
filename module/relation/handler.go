package relation

import (
	"github.com/gin-gonic/gin"

	"SProject/middleware"
	"SProject/module/profile"
	profilesvc "SProject/module/profile/service"
	"SProject/module/relation/service"
	errs "SProject/tools/errs"
)

type Handler struct {
	svc      *service.RelationService
	resolver *profilesvc.Resolver
}

func NewHandler(svc *service.RelationService, resolver *profilesvc.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.POST(r, "/follow/requests", h.HandlerRequest, auth)
	middleware.POST(r, "/follow/requests/respond", h.HandlerRespond, auth)
	middleware.POST(r, "/follow/requests/cancel", h.HandlerCancel, auth)
	middleware.POST(r, "/follow/requests/dismiss", h.HandlerDismiss, auth)
	middleware.GET(r, "/follow/requests/incoming", h.HandlerIncoming, auth)
	middleware.POST(r, "/follow/unfollow", h.HandlerUnfollow, auth)
	middleware.GET(r, "/follow/following", h.HandlerFollowing, auth)
	middleware.GET(r, "/follow/followers", h.HandlerFollowers, auth)
}

type targetReq struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

type respondReq struct {
	SenderID string `json:"sender_id" binding:"required"`
	Accept   bool   `json:"accept"`
}

func (h *Handler) HandlerRequest(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	out, err := h.svc.RequestFollow(c.Request.Context(), caller.ID, req.ProfileID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerRespond(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Respond(c.Request.Context(), caller.ID, req.SenderID, req.Accept); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerCancel(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), caller.ID, req.ProfileID); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerDismiss(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Dismiss(c.Request.Context(), caller.ID, req.ProfileID); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerIncoming(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.IncomingRequests(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerUnfollow(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req targetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	if err := h.svc.Unfollow(c.Request.Context(), caller.ID, req.ProfileID); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerFollowing(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.Following(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerFollowers(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	out, err := h.svc.Followers(c.Request.Context(), caller.ID)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}
