package liveness

import (
	"math/rand"

	"github.com/attendlab/punch-agent-go/internal/domain/capture"
	"github.com/attendlab/punch-agent-go/internal/domain/liveness"
)

// Heuristic thresholds. These values were tuned empirically against
// field imagery; their exact numeric behavior is part of the observed
// contract. Do not rederive them.
const (
	// minFrameDim rejects frames narrower or shorter than this.
	minFrameDim = 200

	// lowLightLuma marks a frame low-light when the sparse-grid
	// average luma falls below it. Low light relaxes every later
	// check through a single toggle.
	lowLightLuma = 60.0

	// brightnessGridSize is the sampling grid for average luma.
	brightnessGridSize = 20

	// edgeSampleCount pixels are taken along each frame edge; an edge
	// is uniform when its luma variance is below edgeUniformVariance.
	// All four uniform edges at once read as a screen capture.
	edgeSampleCount     = 10
	edgeUniformVariance = 50.0

	// Skin tone sampling: central 40% square, every 5th pixel.
	centerFraction = 0.4
	skinSampleStep = 5

	// Minimum skin-tone ratio before the frame is rejected, per
	// lighting mode, and the center brightness below which the
	// rejection reads "too dark" rather than "no face".
	skinRatioMinNormal   = 0.10
	skinRatioMinLowLight = 0.05
	pitchBlackBrightness = 15.0

	// Blur: mean absolute channel difference across random horizontal
	// neighbor pairs must reach blurMinDiff.
	blurSampleCount = 100
	blurMinDiff     = 10.0
)

// trace records which stages ran, for tests that assert the low-light
// mode skips the screenshot and blur checks.
type trace struct {
	lowLight          bool
	screenshotChecked bool
	blurChecked       bool
}

type LivenessServiceImpl struct {
	rng *rand.Rand
}

// NewLivenessService builds the heuristic with the given random seed
// for the blur sampler. The seed only affects which pixel pairs the
// blur check samples, never the verdict taxonomy.
func NewLivenessService(seed int64) *LivenessServiceImpl {
	return &LivenessServiceImpl{rng: rand.New(rand.NewSource(seed))}
}

var _ liveness.Service = (*LivenessServiceImpl)(nil)

// Evaluate implements liveness.Service.
func (s *LivenessServiceImpl) Evaluate(frame capture.Frame) liveness.Verdict {
	v, _ := s.evaluate(frame)
	return v
}

// evaluate runs the fixed pipeline, short-circuiting at the first
// failing check. Cheaper, coarser checks run first to fail fast.
func (s *LivenessServiceImpl) evaluate(frame capture.Frame) (liveness.Verdict, trace) {
	var tr trace

	if !frame.Valid() {
		return reject(liveness.ReasonDecodeFailed), tr
	}

	if frame.Width < minFrameDim || frame.Height < minFrameDim {
		return reject(liveness.ReasonTooSmall), tr
	}

	avgLuma := averageLuma(frame)
	tr.lowLight = avgLuma < lowLightLuma

	if !tr.lowLight {
		tr.screenshotChecked = true
		if allEdgesUniform(frame) {
			return reject(liveness.ReasonScreenshotPattern), tr
		}
	}

	ratio, centerBrightness := skinToneScan(frame, tr.lowLight)
	minRatio := skinRatioMinNormal
	if tr.lowLight {
		minRatio = skinRatioMinLowLight
	}
	if ratio < minRatio {
		if centerBrightness < pitchBlackBrightness {
			return reject(liveness.ReasonTooDark), tr
		}
		// Low-light frames that fail the ratio but are not pitch
		// black are tolerated: skin-tone detection is unreliable
		// there.
		if !tr.lowLight {
			return reject(liveness.ReasonNoFaceDetected), tr
		}
	}

	if !tr.lowLight {
		tr.blurChecked = true
		if s.isBlurry(frame) {
			return reject(liveness.ReasonTooBlurry), tr
		}
	}

	return liveness.Verdict{Valid: true}, tr
}

func reject(reason liveness.RejectionReason) liveness.Verdict {
	return liveness.Verdict{Valid: false, Reason: reason}
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// averageLuma samples a sparse grid across the whole frame.
func averageLuma(f capture.Frame) float64 {
	stepX := f.Width / brightnessGridSize
	if stepX < 1 {
		stepX = 1
	}
	stepY := f.Height / brightnessGridSize
	if stepY < 1 {
		stepY = 1
	}

	var sum float64
	var n int
	for y := 0; y < f.Height; y += stepY {
		for x := 0; x < f.Width; x += stepX {
			r, g, b := f.RGBAAt(x, y)
			sum += luma(r, g, b)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// allEdgesUniform samples pixels along each of the four frame edges and
// reports whether every edge's luma variance is below the uniformity
// threshold. A photo of a screen or a static image typically has flat
// borders, unlike a camera feed framing a face against a varied
// background.
func allEdgesUniform(f capture.Frame) bool {
	top := make([]float64, 0, edgeSampleCount)
	bottom := make([]float64, 0, edgeSampleCount)
	left := make([]float64, 0, edgeSampleCount)
	right := make([]float64, 0, edgeSampleCount)

	for i := 0; i < edgeSampleCount; i++ {
		x := i * (f.Width - 1) / (edgeSampleCount - 1)
		y := i * (f.Height - 1) / (edgeSampleCount - 1)

		r, g, b := f.RGBAAt(x, 0)
		top = append(top, luma(r, g, b))
		r, g, b = f.RGBAAt(x, f.Height-1)
		bottom = append(bottom, luma(r, g, b))
		r, g, b = f.RGBAAt(0, y)
		left = append(left, luma(r, g, b))
		r, g, b = f.RGBAAt(f.Width-1, y)
		right = append(right, luma(r, g, b))
	}

	for _, edge := range [][]float64{top, bottom, left, right} {
		if variance(edge) >= edgeUniformVariance {
			return false
		}
	}
	return true
}

func variance(vals []float64) float64 {
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(vals))
}

// skinToneScan inspects the central square of the frame, sampling every
// skinSampleStep-th pixel, and returns the skin-toned ratio plus the
// average brightness of the sampled region.
func skinToneScan(f capture.Frame, lowLight bool) (ratio, avgBrightness float64) {
	x0 := int(float64(f.Width) * (1 - centerFraction) / 2)
	y0 := int(float64(f.Height) * (1 - centerFraction) / 2)
	x1 := x0 + int(float64(f.Width)*centerFraction)
	y1 := y0 + int(float64(f.Height)*centerFraction)

	var skin, total int
	var brightnessSum float64
	for y := y0; y < y1; y += skinSampleStep {
		for x := x0; x < x1; x += skinSampleStep {
			r, g, b := f.RGBAAt(x, y)
			brightness := (float64(r) + float64(g) + float64(b)) / 3
			brightnessSum += brightness
			total++
			if isSkinTone(r, g, b, brightness, lowLight) {
				skin++
			}
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(skin) / float64(total), brightnessSum / float64(total)
}

func isSkinTone(r, g, b uint8, brightness float64, lowLight bool) bool {
	rf, gf, bf := int(r), int(g), int(b)
	if lowLight {
		return rf > 30 && rf < 255 &&
			gf > 20 && gf < 240 &&
			bf > 15 && bf < 200 &&
			brightness > 20
	}
	diff := rf - gf
	if diff < 0 {
		diff = -diff
	}
	return rf > 95 && rf < 255 &&
		gf > 40 && gf < 240 &&
		bf > 20 && bf < 200 &&
		rf > gf && rf > bf &&
		diff > 15
}

// isBlurry averages the absolute channel difference between random
// pixels and their immediate right neighbors. Sharp captures show
// strong local contrast somewhere; a defocused frame does not.
func (s *LivenessServiceImpl) isBlurry(f capture.Frame) bool {
	var sum float64
	for i := 0; i < blurSampleCount; i++ {
		x := s.rng.Intn(f.Width - 1)
		y := s.rng.Intn(f.Height)
		r1, g1, b1 := f.RGBAAt(x, y)
		r2, g2, b2 := f.RGBAAt(x+1, y)
		sum += absDiff(r1, r2) + absDiff(g1, g2) + absDiff(b1, b2)
	}
	return sum/float64(blurSampleCount) < blurMinDiff
}

func absDiff(a, b uint8) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}
