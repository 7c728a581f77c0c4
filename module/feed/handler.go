package feed

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"SProject/middleware"
	"SProject/module/feed/service"
	"SProject/module/profile"
	profilesvc "SProject/module/profile/service"
	errs "SProject/tools/errs"
)

type Handler struct {
	svc      *service.FeedService
	resolver *profilesvc.Resolver
}

func NewHandler(svc *service.FeedService, resolver *profilesvc.Resolver) *Handler {
	return &Handler{svc: svc, resolver: resolver}
}

func (h *Handler) Register(r gin.IRoutes) {
	auth := middleware.RouteOpt{IsAuth: true}
	middleware.POST(r, "/posts", h.HandlerCreate, auth)
	middleware.GET(r, "/posts", h.HandlerList, auth)
	middleware.GET(r, "/posts/:id", h.HandlerGet, auth)
	middleware.DELETE(r, "/posts/:id", h.HandlerDelete, auth)
	middleware.POST(r, "/posts/:id/like", h.HandlerLike, auth)
	middleware.DELETE(r, "/posts/:id/like", h.HandlerUnlike, auth)
	middleware.GET(r, "/posts/:id/comments", h.HandlerComments, auth)
	middleware.POST(r, "/posts/:id/comments", h.HandlerComment, auth)
	middleware.DELETE(r, "/comments/:id", h.HandlerDeleteComment, auth)
}

type postReq struct {
	Content string `json:"content" binding:"required"`
}

type commentReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) HandlerCreate(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	p, err := h.svc.CreatePost(c.Request.Context(), caller.ID, req.Content)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, p)
}

// HandlerList 按 author 查询参数列帖;缺省列调用者自己的。
func (h *Handler) HandlerList(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	author := c.DefaultQuery("author", caller.ID)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.svc.ListPosts(c.Request.Context(), author, limit)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerGet(c *gin.Context) {
	if _, err := profile.Current(c, h.resolver); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	p, err := h.svc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if p == nil {
		middleware.WriteErr(c, errs.ErrRecordNotFound)
		return
	}
	middleware.WriteData(c, p)
}

func (h *Handler) HandlerDelete(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerLike(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if err := h.svc.Like(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerUnlike(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if err := h.svc.Unlike(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}

func (h *Handler) HandlerComments(c *gin.Context) {
	if _, err := profile.Current(c, h.resolver); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := h.svc.ListComments(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, out)
}

func (h *Handler) HandlerComment(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteErr(c, errs.ErrArgs.WithDetail(err.Error()))
		return
	}
	cm, err := h.svc.Comment(c.Request.Context(), caller.ID, c.Param("id"), req.Content)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, cm)
}

func (h *Handler) HandlerDeleteComment(c *gin.Context) {
	caller, err := profile.Current(c, h.resolver)
	if err != nil {
		middleware.WriteErr(c, err)
		return
	}
	if err := h.svc.DeleteComment(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		middleware.WriteErr(c, err)
		return
	}
	middleware.WriteData(c, nil)
}
