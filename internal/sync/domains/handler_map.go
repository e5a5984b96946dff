package domains

import (
	"fzscan/internal/app/domains/modules/mdprogress"
	"fzscan/internal/sync/domains/handlers/recompute"
	"fzscan/internal/sync/framework"
	"fzscan/pkg/logger"
)

// Deps Handler 依赖
type Deps struct {
	Progress recompute.Recomputer
	Logger   logger.Logger
}

// NewHandlerMap 路由表（ActionType → Handler 映射）
func NewHandlerMap(deps *Deps) map[string]framework.HandlerFactory {
	return map[string]framework.HandlerFactory{
		mdprogress.ActionRecompute: recompute.NewFactory(deps.Progress, deps.Logger),
	}
}
