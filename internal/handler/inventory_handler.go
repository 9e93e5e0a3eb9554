package handler

import (
	"errors"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// usecaseのエラーをHTTPステータスへ変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: ve.Message})
	}

	var nf *usecase.ItemNotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Message: nf.Error()})
	}

	var is *usecase.InsufficientStockError
	if errors.As(err, &is) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: is.Error()})
	}

	var te *usecase.TransactionError
	if errors.As(err, &te) {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: te.Error()})
	}

	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Message: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
}

// /api/inventory の公開API（認証なし）
type InventoryHandler struct {
	inventoryUC *usecase.InventoryUsecase
	purchaseUC  *usecase.PurchaseUsecase
}

// DI
func NewInventoryHandler(inventoryUC *usecase.InventoryUsecase, purchaseUC *usecase.PurchaseUsecase) *InventoryHandler {
	return &InventoryHandler{inventoryUC: inventoryUC, purchaseUC: purchaseUC}
}

// 公開ルートを登録
func (h *InventoryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/inventory", h.list)
	e.POST("/api/inventory/buy", h.buy)
}

// GET /api/inventory
// 在庫が残っているアイテムだけ返す（ページングなし）
func (h *InventoryHandler) list(c echo.Context) error {
	items, err := h.inventoryUC.ListAvailable(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, items)
}

type BuyItemRequest struct {
	ID       string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type BuyRequest struct {
	Items []BuyItemRequest `json:"items"`
}

type BuyResponse struct {
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Items     []usecase.PurchasedItem `json:"items"`
	TotalCost decimal.Decimal         `json:"totalCost"`
}

// POST /api/inventory/buy
func (h *InventoryHandler) buy(c echo.Context) error {
	var req BuyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid purchase data"})
	}

	lines := make([]usecase.PurchaseLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, usecase.PurchaseLine{ID: it.ID, Quantity: it.Quantity})
	}

	out, err := h.purchaseUC.Purchase(c.Request().Context(), lines)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, BuyResponse{
		Success:   true,
		Message:   "Purchase successful",
		Items:     out.Items,
		TotalCost: out.TotalCost,
	})
}
