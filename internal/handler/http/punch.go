package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/punch"
	"github.com/attendlab/punch-agent-go/internal/handler/http/response"
	"github.com/attendlab/punch-agent-go/internal/pkg/camera"
	"github.com/attendlab/punch-agent-go/internal/pkg/geo"
	"github.com/attendlab/punch-agent-go/internal/pkg/validator"
)

// maxFrameBytes caps an ingested web frame at 10MB, matching the
// attendance API's own proof photo limit.
const maxFrameBytes = 10 << 20

type PunchHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	IngestFrame(w http.ResponseWriter, r *http.Request)
	IngestPosition(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type punchHandlerImpl struct {
	punchService punch.PunchService
	bridge       *camera.BridgeProvider
	positions    *geo.PushSource
}

func NewPunchHandler(punchService punch.PunchService, bridge *camera.BridgeProvider, positions *geo.PushSource) PunchHandler {
	return &punchHandlerImpl{
		punchService: punchService,
		bridge:       bridge,
		positions:    positions,
	}
}

// Punch implements PunchHandler. The attempt's terminal outcome is
// data, not an HTTP error: failed and cancelled attempts still return
// 200 with the outcome for the UI to render.
func (h *punchHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.punchService.Punch(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, punch.NewAttemptResponse(attempt))
}

type ingestFrameRequest struct {
	Image     string   `json:"image"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (req *ingestFrameRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(req.Image) {
		errs = append(errs, validator.ValidationError{
			Field:   "image",
			Message: "image is required",
		})
	}

	if req.Latitude != nil && !validator.IsValidLatitude(*req.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if req.Longitude != nil && !validator.IsValidLongitude(*req.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// decodeImagePayload accepts either a bare base64 string or a
// data:image/...;base64, URL, which is what canvas.toDataURL emits.
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		_, encoded, found := strings.Cut(payload, ",")
		if !found {
			return nil, errors.New("malformed data URL")
		}
		payload = encoded
	}
	return base64.StdEncoding.DecodeString(payload)
}

// IngestFrame implements PunchHandler. The web shell posts its canvas
// capture here before triggering the punch.
func (h *punchHandlerImpl) IngestFrame(w http.ResponseWriter, r *http.Request) {
	var req ingestFrameRequest
	body := http.MaxBytesReader(w, r.Body, maxFrameBytes*2)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		slog.Error("Failed to decode frame payload", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	data, err := decodeImagePayload(req.Image)
	if err != nil {
		response.BadRequest(w, "image must be base64 encoded", nil)
		return
	}
	if len(data) > maxFrameBytes {
		response.BadRequest(w, "frame must not exceed 10MB", nil)
		return
	}

	var fix *attendance.GeoFix
	if req.Latitude != nil && req.Longitude != nil {
		fix = &attendance.GeoFix{
			Latitude:  geo.Round6(*req.Latitude),
			Longitude: geo.Round6(*req.Longitude),
		}
	}

	h.bridge.SetFrame(data, fix)
	response.SuccessWithMessage(w, "Frame staged", nil)
}

type ingestPositionRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (req *ingestPositionRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(req.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(req.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// IngestPosition implements PunchHandler.
func (h *punchHandlerImpl) IngestPosition(w http.ResponseWriter, r *http.Request) {
	var req ingestPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode position payload", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	h.positions.Push(req.Latitude, req.Longitude)
	response.SuccessWithMessage(w, "Position recorded", nil)
}

// Today implements PunchHandler. Fetches on demand when no snapshot
// exists yet.
func (h *punchHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	day := h.punchService.Today()
	if day == nil {
		refreshed, err := h.punchService.Refresh(r.Context())
		if err != nil {
			slog.Error("Failed to refresh attendance", "error", err)
			response.BadGateway(w, "Could not reach the attendance service")
			return
		}
		day = refreshed
	}
	if day == nil {
		response.HandleError(w, attendance.ErrNoRecordForDate)
		return
	}

	response.Success(w, attendance.NewAttendanceDayResponse(*day))
}

// Status implements PunchHandler.
func (h *punchHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.punchService.Status())
}
