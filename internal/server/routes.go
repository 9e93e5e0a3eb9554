package server

import (
	"app/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	//公開（認証なし）：一覧と購入
	h.Inventory.RegisterRoutes(e)

	//管理者認証
	h.Auth.RegisterRoutes(e)

	//管理者のみ：bulk作成・更新・購入履歴
	h.Admin.RegisterRoutes(e, cfg)
}
