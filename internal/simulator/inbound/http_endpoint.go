package inbound

import (
	"github.com/shandysiswandi/webotp/internal/pkg/router"
	"github.com/shandysiswandi/webotp/internal/simulator/usecase"
)

type HTTPEndpoint struct {
	uc uc
}

// Health reports liveness.
func (h *HTTPEndpoint) Health(*router.Request) (any, error) {
	return HealthResponse{Status: "ok"}, nil
}

// Status reports the bridge state, the detected capabilities and how many
// credential requests wait for an SMS.
func (h *HTTPEndpoint) Status(r *router.Request) (any, error) {
	st := h.uc.Status(r.Context())

	return StatusResponse{
		Active:       st.Active,
		Pending:      st.Pending,
		Capabilities: st.Capabilities,
	}, nil
}

// Start issues a new credential request, superseding any outstanding one.
func (h *HTTPEndpoint) Start(r *router.Request) (any, error) {
	if err := h.uc.Start(r.Context()); err != nil {
		return nil, err
	}

	return StartResponse{Active: true}, nil
}

// Stop aborts the outstanding credential request, if any.
func (h *HTTPEndpoint) Stop(r *router.Request) (any, error) {
	h.uc.Stop(r.Context())
	return nil, nil
}

// DeliverSMS hands an origin-bound SMS to the oldest waiting request.
func (h *HTTPEndpoint) DeliverSMS(r *router.Request) (any, error) {
	var req DeliverSMSRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.DeliverSMS(r.Context(), usecase.DeliverSMSInput{
		Message: req.Message,
		Via:     req.Via,
	})
	if err != nil {
		return nil, err
	}

	return deliveryResponse(out, ""), nil
}

// GenerateSMS renders a TOTP code as an origin-bound SMS and delivers it.
func (h *HTTPEndpoint) GenerateSMS(r *router.Request) (any, error) {
	var req GenerateSMSRequest
	if err := r.DecodeOptionalBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.GenerateSMS(r.Context(), usecase.GenerateSMSInput{
		Origin:   req.Origin,
		Embedded: req.Embedded,
		Via:      req.Via,
	})
	if err != nil {
		return nil, err
	}

	return deliveryResponse(&out.DeliverSMSOutput, out.Message), nil
}

// Reject fails the oldest waiting request with a named error.
func (h *HTTPEndpoint) Reject(r *router.Request) (any, error) {
	var req RejectRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	id, err := h.uc.Reject(r.Context(), usecase.RejectInput{
		Name:    req.Name,
		Message: req.Message,
	})
	if err != nil {
		return nil, err
	}

	return RejectResponse{RequestID: id}, nil
}

func deliveryResponse(out *usecase.DeliverSMSOutput, text string) DeliveryResponse {
	return DeliveryResponse{
		Queued:      out.Queued,
		RequestID:   out.Delivery.RequestID,
		Origin:      out.Delivery.Origin,
		Embedded:    out.Delivery.Embedded,
		Message:     text,
		CurrentTOTP: out.CurrentTOTP,
	}
}
