package inbound

import (
	"net/http"

	"github.com/shandysiswandi/webotp/internal/webotp"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Active       bool                `json:"active"`
	Pending      int                 `json:"pending"`
	Capabilities webotp.Capabilities `json:"capabilities"`
}

type StartResponse struct {
	Active bool `json:"active"`
}

func (StartResponse) StatusCode() int { return http.StatusAccepted }

func (StartResponse) Message() string { return "credential request started" }

type DeliverSMSRequest struct {
	Message string `json:"message"`
	Via     string `json:"via"`
}

type GenerateSMSRequest struct {
	Origin   string `json:"origin"`
	Embedded string `json:"embedded"`
	Via      string `json:"via"`
}

type DeliveryResponse struct {
	Queued      bool   `json:"queued"`
	RequestID   string `json:"request_id,omitempty"`
	Origin      string `json:"origin,omitempty"`
	Embedded    string `json:"embedded,omitempty"`
	Message     string `json:"message,omitempty"`
	CurrentTOTP bool   `json:"current_totp"`
}

type RejectRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type RejectResponse struct {
	RequestID string `json:"request_id"`
}
