package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/realtime"
	"github.com/carehub/storefront/internal/toast"
	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/response"
)

// ToastHandler exposes the server's toast queue.
type ToastHandler struct {
	queue *toast.Queue
	hub   *realtime.Hub
}

// NewToastHandler constructs a handler. hub may be nil when streaming is disabled.
func NewToastHandler(queue *toast.Queue, hub *realtime.Hub) *ToastHandler {
	return &ToastHandler{queue: queue, hub: hub}
}

// GET /api/toasts
func (h *ToastHandler) List(c *gin.Context) {
	items := h.queue.List()
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Count: len(items)})
}

// POST /api/toasts
func (h *ToastHandler) Create(c *gin.Context) {
	var body toast.Descriptor
	if !bindAndValidate(c, &body) {
		return
	}

	created := h.queue.Enqueue(body)
	response.Success(c, http.StatusAccepted, created)
}

// DELETE /api/toasts/:id answers 200 whether or not the toast was still visible.
func (h *ToastHandler) Dismiss(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.NewBadRequest("toast id must be a non-negative integer"))
		return
	}

	removed := h.queue.Dismiss(id)
	response.Success(c, http.StatusOK, gin.H{"id": id, "removed": removed})
}

// DELETE /api/toasts
func (h *ToastHandler) Clear(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"removed": h.queue.Clear()})
}

// GET /api/toasts/stream upgrades to a WebSocket that first receives a
// snapshot of the queue, then every change event.
func (h *ToastHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.ErrServiceUnavailable)
		return
	}
	h.hub.Serve([]string{realtime.StreamToasts}, c.Writer, c.Request, func() []realtime.Message {
		return []realtime.Message{realtime.ToastSnapshot(h.queue.List())}
	})
}
