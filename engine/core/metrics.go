package core

import "github.com/spaghettifunk/posecreator/engine/containers"

const AVG_COUNT int = 30

// Metrics keeps a rolling average of frame times and the frames per second.
type Metrics struct {
	frameTimes         *containers.RingQueue[float64]
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewMetrics() *Metrics {
	return &Metrics{
		frameTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// Update records the duration of one frame, in seconds.
func (m *Metrics) Update(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0

	// Keep only the last AVG_COUNT frames.
	if m.frameTimes.IsFull() {
		_, _ = m.frameTimes.Dequeue()
	}
	_ = m.frameTimes.Enqueue(frameMS)

	sum := 0.0
	m.frameTimes.Each(func(v float64) {
		sum += v
	})
	m.msAvg = sum / float64(m.frameTimes.Len())

	// Calculate Frames per second.
	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}

	// Count all Frames.
	m.frames++
}

func (m *Metrics) FPS() float64 {
	return m.fps
}

func (m *Metrics) FrameTime() float64 {
	return m.msAvg
}

func (m *Metrics) Frame() (float64, float64) {
	return m.fps, m.msAvg
}
