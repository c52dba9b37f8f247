package api

import (
	"encoding/json"
	"net/http"

	"github.com/Domenick1991/skydispatch/internal/service/flights"
	"github.com/Domenick1991/skydispatch/internal/service/transfer"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service   flights.FlightUseCase
	transfers transfer.TransferUseCase
}

type lockRequest struct {
	Locked truthy `json:"locked"`
}

// truthy accepts any JSON value for a flag: false, null, 0 and "" are false,
// everything else is true.
type truthy bool

func (t *truthy) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = false
	case bool:
		*t = truthy(x)
	case float64:
		*t = x != 0
	case string:
		*t = x != ""
	default:
		*t = true
	}
	return nil
}

type transferRequest struct {
	ToUserID string `json:"toUserId"`
}

func NewFlightHandler(service flights.FlightUseCase, transfers transfer.TransferUseCase) *FlightHandler {
	return &FlightHandler{service: service, transfers: transfers}
}

func (h *FlightHandler) Register(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("", h.list)
	router.POST("", authn, h.create)
	router.PUT("/:id", authn, h.update)
	router.DELETE("/:id", authn, h.delete)
	router.POST("/:id/lock", authn, requireAdmin, h.lock)
	router.POST("/:id/transfer", authn, h.requestTransfer)
	router.POST("/:id/transfer/accept", authn, h.acceptTransfer)
	router.POST("/:id/transfer/decline", authn, h.declineTransfer)
}

// RegisterTransfers mounts the per-user transfer inbox.
func (h *FlightHandler) RegisterTransfers(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("/pending", authn, h.pendingTransfers)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.Input
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.Create(c.Request.Context(), currentSession(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *FlightHandler) update(c *gin.Context) {
	var req flights.Input
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.Update(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	ok(c)
}

func (h *FlightHandler) lock(c *gin.Context) {
	var req lockRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.service.SetLock(c.Request.Context(), currentSession(c), c.Param("id"), bool(req.Locked))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) requestTransfer(c *gin.Context) {
	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.transfers.Request(c.Request.Context(), currentSession(c), c.Param("id"), req.ToUserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) acceptTransfer(c *gin.Context) {
	view, err := h.transfers.Accept(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) declineTransfer(c *gin.Context) {
	view, err := h.transfers.Decline(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FlightHandler) pendingTransfers(c *gin.Context) {
	list, err := h.transfers.Pending(c.Request.Context(), currentSession(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
