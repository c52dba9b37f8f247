package api

import (
	"net/http"

	"github.com/Domenick1991/skydispatch/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.GET("/me", authn, h.me)
	router.POST("/logout", authn, h.logout)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req auth.Credentials
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.Register(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	ok(c)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req auth.Credentials
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c))
}

func (h *AuthHandler) logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), c.GetString(tokenKey), currentSession(c))
	ok(c)
}
