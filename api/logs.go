package api

import (
	"net/http"

	"github.com/Domenick1991/skydispatch/internal/service/audit"
	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	service audit.AuditUseCase
}

func NewLogHandler(service audit.AuditUseCase) *LogHandler {
	return &LogHandler{service: service}
}

func (h *LogHandler) Register(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("", authn, requireAdmin, h.list)
	router.POST("/events", authn, h.event)
}

func (h *LogHandler) list(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *LogHandler) event(c *gin.Context) {
	var req audit.ClientEventInput
	if !bindJSON(c, &req) {
		return
	}
	h.service.RecordClientEvent(c.Request.Context(), currentSession(c), req)
	ok(c)
}
