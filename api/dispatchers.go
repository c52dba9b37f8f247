package api

import (
	"net/http"

	"github.com/Domenick1991/skydispatch/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type DispatcherHandler struct {
	service auth.AuthUseCase
}

func NewDispatcherHandler(service auth.AuthUseCase) *DispatcherHandler {
	return &DispatcherHandler{service: service}
}

func (h *DispatcherHandler) Register(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("", authn, requireAdmin, h.list)
	router.GET("/online", authn, h.online)
	router.DELETE("/:id", authn, requireAdmin, h.delete)
}

func (h *DispatcherHandler) list(c *gin.Context) {
	list, err := h.service.ListDispatchers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DispatcherHandler) online(c *gin.Context) {
	list, err := h.service.OnlineDispatchers(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *DispatcherHandler) delete(c *gin.Context) {
	if err := h.service.DeleteDispatcher(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c)
}
