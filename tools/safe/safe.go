package safe

import (
	"go.uber.org/zap"

	"SProject/logger"
)

// Go 带 recover 的 goroutine 启动,后台任务 panic 不拖垮进程。
func Go(name string, f func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panic", zap.String("name", name), zap.Any("panic", r))
			}
		}()
		f()
	}()
}
