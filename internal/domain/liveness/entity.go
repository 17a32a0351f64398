package liveness

import "github.com/attendlab/punch-agent-go/internal/domain/capture"

// RejectionReason classifies why a frame failed the liveness heuristic.
type RejectionReason string

const (
	ReasonTooSmall          RejectionReason = "TOO_SMALL"
	ReasonScreenshotPattern RejectionReason = "SCREENSHOT_PATTERN"
	ReasonNoFaceDetected    RejectionReason = "NO_FACE_DETECTED"
	ReasonTooDark           RejectionReason = "TOO_DARK"
	ReasonTooBlurry         RejectionReason = "TOO_BLURRY"
	ReasonDecodeFailed      RejectionReason = "DECODE_FAILED"
)

// Message returns the user-facing rejection text. The orchestrator
// passes it through to the UI unchanged.
func (r RejectionReason) Message() string {
	switch r {
	case ReasonTooSmall:
		return "The captured photo is too small. Please retake it."
	case ReasonScreenshotPattern:
		return "The photo looks like a screen capture. Please take a live selfie."
	case ReasonNoFaceDetected:
		return "No face was detected. Please make sure your face is in the frame."
	case ReasonTooDark:
		return "The photo is too dark. Please move to a brighter spot."
	case ReasonTooBlurry:
		return "The photo is blurry. Please hold the camera steady and retake it."
	case ReasonDecodeFailed:
		return "The photo could not be read. Please retake it."
	}
	return "The photo could not be verified. Please retake it."
}

// Verdict is the immutable result of evaluating one frame. Reason is
// set only when Valid is false.
type Verdict struct {
	Valid  bool
	Reason RejectionReason
}

// Service evaluates a frame against the on-device liveness heuristic.
// Evaluate never fails: every input, including a malformed frame,
// resolves to a Verdict.
type Service interface {
	Evaluate(frame capture.Frame) Verdict
}
