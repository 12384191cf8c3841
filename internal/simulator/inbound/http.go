package inbound

import (
	"net/http"

	"github.com/shandysiswandi/webotp/internal/pkg/router"
)

// RegisterHTTPEndpoint mounts the simulator API on r. events streams
// dispatched autofill events and may be nil.
func RegisterHTTPEndpoint(r *router.Router, uc uc, events http.Handler) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/health", end.Health)

	r.GET("/api/v1/webotp/status", end.Status)
	r.POST("/api/v1/webotp/start", end.Start)
	r.POST("/api/v1/webotp/stop", end.Stop)

	r.POST("/api/v1/sms", end.DeliverSMS)
	r.POST("/api/v1/sms/generate", end.GenerateSMS)
	r.POST("/api/v1/sms/reject", end.Reject)

	if events != nil {
		r.GETRaw("/api/v1/webotp/events", events)
	}
}
