package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carehub/storefront/internal/realtime"
	appErrors "github.com/carehub/storefront/pkg/errors"
	"github.com/carehub/storefront/pkg/response"
)

// RealtimeHandler multiplexes the known broadcast streams over one WebSocket.
type RealtimeHandler struct {
	hub      *realtime.Hub
	snapshot func(stream string) (realtime.Message, bool)
}

// NewRealtimeHandler constructs a handler. snapshot, when set, supplies the
// message a client receives for a stream right after connecting.
func NewRealtimeHandler(hub *realtime.Hub, snapshot func(stream string) (realtime.Message, bool)) *RealtimeHandler {
	return &RealtimeHandler{hub: hub, snapshot: snapshot}
}

// Stream handles GET /ws?streams=toasts,catalog. Unknown stream names are
// rejected; no streams means every known stream.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		response.Error(c, appErrors.ErrServiceUnavailable)
		return
	}

	var streams []string
	for _, raw := range strings.Split(c.Query("streams"), ",") {
		stream := strings.ToLower(strings.TrimSpace(raw))
		if stream == "" {
			continue
		}
		if !realtime.IsKnownStream(stream) {
			response.Error(c, appErrors.NewBadRequest("unknown stream "+stream))
			return
		}
		streams = append(streams, stream)
	}
	if len(streams) == 0 {
		streams = []string{realtime.StreamToasts, realtime.StreamCatalog}
	}

	var snapshot realtime.SnapshotFunc
	if h.snapshot != nil {
		snapshot = func() []realtime.Message {
			var initial []realtime.Message
			for _, stream := range streams {
				if msg, ok := h.snapshot(stream); ok {
					initial = append(initial, msg)
				}
			}
			return initial
		}
	}

	h.hub.Serve(streams, c.Writer, c.Request, snapshot)
}
