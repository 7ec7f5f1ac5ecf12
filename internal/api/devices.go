package api

import (
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/mastercontrol/internal/device"
	"github.com/nerrad567/mastercontrol/internal/deviceid"
)

// registerRequest is the body of POST /api/register-device.
type registerRequest struct {
	DeviceID string `json:"deviceId"`
	Email    string `json:"email"`
	IP       string `json:"ip"`
	Time     string `json:"time"`
}

// handleRegisterDevice adds a device to the index. Registering an ID that
// is already present succeeds without changing the stored record.
func (s *Server) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := deviceid.Validate(req.DeviceID); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	rec := device.Record{
		DeviceID: req.DeviceID,
		Email:    req.Email,
		IP:       req.IP,
		Time:     req.Time,
	}
	if rec.IP == "" {
		rec.IP = clientIP(r)
	}
	if rec.Time == "" {
		rec.Time = time.Now().UTC().Format(time.RFC3339)
	}

	added, err := s.devices.Register(r.Context(), rec)
	if err != nil {
		s.logger.Error("registering device failed", "device_id", rec.DeviceID, "error", err)
		writeInternalError(w, "failed to register device")
		return
	}
	if added {
		s.deviceRegistered(rec)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// handleListDevices returns every registered device in registration order.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.devices.List(r.Context()))
}

// clientIP returns the caller's address without the port. RemoteAddr has
// already been rewritten by the RealIP middleware when proxy headers exist.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
