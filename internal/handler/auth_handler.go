package handler

import (
	"net/http"

	auth "app/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// /api/auth の管理者認証API
type AuthHandler struct {
	registerUC *auth.RegisterAdminUsecase
	loginUC    *auth.LoginUsecase
}

// DIコンストラクタ
func NewAuthHandler(registerUC *auth.RegisterAdminUsecase, loginUC *auth.LoginUsecase) *AuthHandler {
	return &AuthHandler{registerUC: registerUC, loginUC: loginUC}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/auth/register", h.register)
	e.POST("/api/auth/login", h.login)
}

// /api/auth/register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// /api/auth/login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// POST /api/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "username and password required"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterAdminInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidInput, auth.ErrPasswordTooShort:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid username or password"})
		case auth.ErrUserAlreadyExists:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "User already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
		}
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: out.Token})
}

// POST /api/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid credentials"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		//存在しないユーザーもパスワード違いも同じ応答にする
		if err == auth.ErrInvalidCredentials {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: out.Token})
}
