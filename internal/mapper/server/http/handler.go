package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/autopeer-io/livemapper/internal/mapper/core"
	"github.com/autopeer-io/livemapper/pkg/log"
)

const healthMessage = "Live Mapper API is running"

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type handler struct {
	provider StatusProvider
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: healthMessage})
}

func (h *handler) probe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) vehicleStatus(w http.ResponseWriter, r *http.Request) {
	payload, err := h.provider.GetVehicleStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// writeError maps domain errors onto {"detail": ...} responses.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	detail := err.Error()

	var upstream *core.UpstreamHTTPError
	var internal *core.InternalError
	switch {
	case errors.As(err, &upstream):
		code = upstream.StatusCode
		detail = upstream.Error()
	case errors.As(err, &internal):
		code = internal.StatusCode()
		detail = internal.Message
	}

	// Codes outside the valid range would make WriteHeader panic.
	if code < 100 || code > 999 {
		code = http.StatusBadGateway
	}

	writeJSON(w, code, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error(err, "Failed to encode response")
		code = http.StatusInternalServerError
		body = []byte(`{"detail":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
