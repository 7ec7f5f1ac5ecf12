package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/mastercontrol/internal/deviceconfig"
	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/influxdb"
)

// updateConfigRequest is the body of POST /api/update-config.
type updateConfigRequest struct {
	DeviceID string          `json:"deviceId"`
	Config   json.RawMessage `json:"config"`
}

// handleUpdateConfig replaces a device's configuration document.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req updateConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := deviceid.Validate(req.DeviceID); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if err := deviceconfig.ValidateDocument(req.Config); err != nil {
		writeValidationError(w, "config must be a JSON object")
		return
	}

	if err := s.configs.Set(r.Context(), req.DeviceID, req.Config); err != nil {
		s.logger.Error("saving config failed", "device_id", req.DeviceID, "error", err)
		writeInternalError(w, "failed to update config")
		return
	}
	s.configUpdated(req.DeviceID, req.Config)

	writeJSON(w, http.StatusOK, map[string]string{"status": "config updated"})
}

// handleGetConfig returns the stored configuration, or the
// {"error":"No config found"} marker when there is none.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathDeviceID(w, r)
	if !ok {
		return
	}
	doc, found := s.configs.Get(r.Context(), deviceID)
	if !found {
		doc = deviceconfig.NotFoundDocument()
	}
	s.recordActivity(deviceID, influxdb.EventConfigFetched)
	writeJSON(w, http.StatusOK, doc)
}

// handleGetConfigOrDefault returns the stored configuration, or the
// operational default for devices that have none.
func (s *Server) handleGetConfigOrDefault(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := pathDeviceID(w, r)
	if !ok {
		return
	}
	s.recordActivity(deviceID, influxdb.EventConfigFetched)
	writeJSON(w, http.StatusOK, s.configs.GetOrDefault(r.Context(), deviceID))
}
