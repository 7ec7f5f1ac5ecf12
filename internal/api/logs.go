package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
)

// sendLogRequest is the body of POST /api/send-log. Log may be any JSON value.
type sendLogRequest struct {
	DeviceID string          `json:"deviceId"`
	Log      json.RawMessage `json:"log"`
}

// handleSendLog appends one entry to a device's log stream.
func (s *Server) handleSendLog(w http.ResponseWriter, r *http.Request) {
	var req sendLogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := deviceid.Validate(req.DeviceID); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if len(req.Log) == 0 || bytes.Equal(req.Log, []byte("null")) {
		writeValidationError(w, "log is required")
		return
	}

	n, err := s.logs.Append(r.Context(), req.DeviceID, req.Log)
	if err != nil {
		s.logger.Error("saving log entry failed", "device_id", req.DeviceID, "error", err)
		writeInternalError(w, "failed to save log")
		return
	}
	s.LogAppended(req.DeviceID, req.Log, n)

	writeJSON(w, http.StatusOK, map[string]string{"status": "log saved"})
}

// handleGetLogs returns a device's full log stream, oldest first.
func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathDeviceID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.logs.List(r.Context(), deviceID))
}
