package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"SProject/logger"
	errs "SProject/tools/errs"
)

// 统一响应：HTTP 始终 200，业务码在 body 里（网关/客户端按 code 分支）。
type APIResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func WriteData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResp{Code: 0, Msg: "ok", Data: data})
}

func WriteErr(c *gin.Context, err error) {
	var codeErr errs.CodeError
	if errors.As(err, &codeErr) {
		c.JSON(http.StatusOK, APIResp{Code: codeErr.Code, Msg: codeErr.Msg + sep(codeErr.Detail)})
		return
	}
	logger.Error("unclassified handler error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusOK, APIResp{Code: errs.ServerInternalError, Msg: "internal error"})
}

func sep(detail string) string {
	if detail == "" {
		return ""
	}
	return ": " + detail
}
