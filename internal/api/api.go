package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/utsav7416/smart-home-controls/internal/alerts"
	"github.com/utsav7416/smart-home-controls/internal/backend"
	"github.com/utsav7416/smart-home-controls/internal/devicestore"
	"github.com/utsav7416/smart-home-controls/internal/energy"
	"github.com/utsav7416/smart-home-controls/internal/heatmap"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/registry"
	"github.com/utsav7416/smart-home-controls/internal/usage"
)

// Server is the widget-facing HTTP surface. It owns range enforcement for
// device adjustments; the store behind it assumes pre-validated input.
type Server struct {
	store    *devicestore.Store
	recorder *usage.Recorder
	kv       *keyval.Broker
	poller   *backend.Poller
}

type ValueRequest struct {
	Value int `json:"value"`
}

type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(store *devicestore.Store, recorder *usage.Recorder, kv *keyval.Broker, poller *backend.Poller) *Server {
	return &Server{
		store:    store,
		recorder: recorder,
		kv:       kv,
		poller:   poller,
	}
}

// Router builds the route table with the CORS layer the dashboard needs.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/rooms", s.getRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{room}/devices", s.getDevices).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms/{room}/devices/{id}/toggle", s.toggleDevice).Methods(http.MethodPost)
	r.HandleFunc("/api/rooms/{room}/devices/{id}/value", s.setDeviceValue).Methods(http.MethodPut)
	r.HandleFunc("/api/rooms/{room}/devices/{id}/heatmap", s.getHeatmap).Methods(http.MethodGet)
	r.HandleFunc("/api/energy", s.getEnergy).Methods(http.MethodGet)
	r.HandleFunc("/api/usage", s.getUsage).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/settings", s.getAlertSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts/settings", s.putAlertSettings).Methods(http.MethodPut)
	r.HandleFunc("/api/backend/{name}", s.getBackendResult).Methods(http.MethodGet)

	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) getRooms(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, RoomsResponse{Rooms: registry.Rooms()})
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	room := mux.Vars(r)["room"]
	snap := s.store.Snapshot()
	devices, ok := snap[room]
	if !ok {
		s.writeError(w, http.StatusNotFound, "Room not found")
		return
	}
	s.writeJSON(w, http.StatusOK, devices)
}

func (s *Server) toggleDevice(w http.ResponseWriter, r *http.Request) {
	room, id, ok := s.deviceVars(w, r)
	if !ok {
		return
	}

	s.store.Toggle(room, id)

	d, found := s.store.Device(room, id)
	if !found {
		s.writeError(w, http.StatusNotFound, "Device not found")
		return
	}

	log.Info().Str("room", room).Str("device", d.Name).Bool("is_on", d.IsOn).Msg("Device toggled via API")
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) setDeviceValue(w http.ResponseWriter, r *http.Request) {
	room, id, ok := s.deviceVars(w, r)
	if !ok {
		return
	}

	var req ValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	d, found := s.store.Device(room, id)
	if !found {
		s.writeError(w, http.StatusNotFound, "Device not found")
		return
	}

	// Range enforcement lives here, at the control surface.
	bounds := registry.ValueRange(d.Name, d.Property)
	if req.Value < bounds.Min || req.Value > bounds.Max {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid value. Must be between %d and %d", bounds.Min, bounds.Max))
		return
	}

	s.store.SetValue(room, id, req.Value)

	d, _ = s.store.Device(room, id)
	log.Info().Str("room", room).Str("device", d.Name).Int("value", d.Value).Msg("Device adjusted via API")
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) getHeatmap(w http.ResponseWriter, r *http.Request) {
	room, id, ok := s.deviceVars(w, r)
	if !ok {
		return
	}

	d, found := s.store.Device(room, id)
	if !found {
		s.writeError(w, http.StatusNotFound, "Device not found")
		return
	}

	cells := heatmap.Build(s.recorder.DayCounts(room, d.Name), time.Now())
	s.writeJSON(w, http.StatusOK, cells)
}

// getEnergy recomputes the snapshot from live device state on every request;
// the estimate is derived data and never stored.
func (s *Server) getEnergy(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, energy.Estimate(s.store.Snapshot()))
}

func (s *Server) getUsage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.recorder.Ledger())
}

func (s *Server) getAlertSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, alerts.LoadSettings(s.kv))
}

func (s *Server) putAlertSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled               *bool `json:"enabled"`
		HighUsageEnabled      *bool `json:"highUsageEnabled"`
		MediumUsageEnabled    *bool `json:"mediumUsageEnabled"`
		HighUsageThreshold    *int  `json:"highUsageThreshold"`
		MediumUsageThreshold  *int  `json:"mediumUsageThreshold"`
		CooldownPeriodMinutes *int  `json:"cooldownPeriodMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Cooldown timestamps are owned by the alert watcher; the settings form
	// can only change configuration fields.
	settings := alerts.LoadSettings(s.kv)
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.HighUsageEnabled != nil {
		settings.HighUsageEnabled = *req.HighUsageEnabled
	}
	if req.MediumUsageEnabled != nil {
		settings.MediumUsageEnabled = *req.MediumUsageEnabled
	}
	if req.HighUsageThreshold != nil {
		settings.HighUsageThreshold = *req.HighUsageThreshold
	}
	if req.MediumUsageThreshold != nil {
		settings.MediumUsageThreshold = *req.MediumUsageThreshold
	}
	if req.CooldownPeriodMinutes != nil {
		settings.CooldownPeriodMinutes = *req.CooldownPeriodMinutes
	}

	if err := alerts.SaveSettings(s.kv, settings); err != nil {
		log.Error().Err(err).Msg("Failed to save alert settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Msg("Alert settings updated via API")
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) getBackendResult(w http.ResponseWriter, r *http.Request) {
	if s.poller == nil {
		s.writeError(w, http.StatusNotFound, "Backend polling not configured")
		return
	}

	name := mux.Vars(r)["name"]
	result, ok := s.poller.Result(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Unknown backend endpoint")
		return
	}

	// Failures are surfaced inline with the reason; the widget renders the
	// banner and prompts the user to verify the backend is reachable.
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) deviceVars(w http.ResponseWriter, r *http.Request) (room string, id int, ok bool) {
	vars := mux.Vars(r)
	room = vars["room"]
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Device id must be an integer")
		return "", 0, false
	}
	return room, id, true
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
