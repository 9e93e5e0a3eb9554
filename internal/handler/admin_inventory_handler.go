package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 1ファイルあたりの上限（5MB）
const maxImageSizeBytes = 5 * 1024 * 1024

// /api/inventory の管理者用API（bulk作成・更新）と /api/purchases
type AdminInventoryHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewAdminInventoryHandler(uc *usecase.InventoryUsecase) *AdminInventoryHandler {
	return &AdminInventoryHandler{uc: uc}
}

// adminを登録
func (h *AdminInventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api")

	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/inventory/bulk", h.bulkCreate)
	g.PUT("/inventory/:id", h.update)
	g.GET("/purchases", h.listPurchases)
}

// bulk作成の1件分（multipartのitemsフィールドに入るJSON）
type bulkItemRequest struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	AvailableUnits int64           `json:"available_units"`
}

// POST /api/inventory/bulk
// multipart: items=JSON配列、images=ファイル（items[i]とimages[i]をインデックスで対応させる）
func (h *AdminInventoryHandler) bulkCreate(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	itemsJSON := c.FormValue("items")
	if strings.TrimSpace(itemsJSON) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Please provide items to create"})
	}

	var reqs []bulkItemRequest
	if err := json.Unmarshal([]byte(itemsJSON), &reqs); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid items"})
	}
	if len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Please provide items to create"})
	}

	//画像はなくてもよい（ないアイテムはプレースホルダー）
	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["images"]
	}

	inputs := make([]usecase.BulkCreateItemInput, 0, len(reqs))
	for i, req := range reqs {
		in := usecase.BulkCreateItemInput{
			Name:           req.Name,
			Price:          req.Price,
			AvailableUnits: req.AvailableUnits,
		}

		if i < len(files) {
			data, err := readImageFile(files[i])
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
			}
			in.Image = data
		}

		inputs = append(inputs, in)
	}

	created, err := h.uc.AdminBulkCreate(c.Request().Context(), adminID, inputs)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// JSONボディでの部分更新（multipartでない場合）
type updateItemRequest struct {
	Name           *string          `json:"name"`
	Price          *decimal.Decimal `json:"price"`
	AvailableUnits *int64           `json:"available_units"`
}

// PUT /api/inventory/:id
// JSONとmultipart（image付き）を同じ部分更新の形に正規化する
func (h *AdminInventoryHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Unauthorized"})
	}

	itemID := c.Param("id")

	var in usecase.UpdateItemInput

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		//multipart: フィールドは文字列で来るのでここでパースする
		if v := c.FormValue("name"); v != "" {
			in.Name = &v
		}
		if v := c.FormValue("price"); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid price"})
			}
			in.Price = &price
		}
		if v := c.FormValue("available_units"); v != "" {
			units, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid available_units"})
			}
			in.AvailableUnits = &units
		}

		if fh, err := c.FormFile("image"); err == nil && fh != nil {
			data, err := readImageFile(fh)
			if err != nil {
				return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
			}
			in.Image = data
		}
	} else {
		var req updateItemRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
		}
		in.Name = req.Name
		in.Price = req.Price
		in.AvailableUnits = req.AvailableUnits
	}

	updated, err := h.uc.AdminUpdateItem(c.Request().Context(), adminID, itemID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// GET /api/purchases
func (h *AdminInventoryHandler) listPurchases(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.AdminListPurchases(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// アップロードファイルを読み込む（サイズ上限チェック付き）
func readImageFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxImageSizeBytes {
		return nil, errors.New("file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(io.LimitReader(f, maxImageSizeBytes))
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
