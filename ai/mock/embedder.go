package mock

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// DefaultDimensions is the length of vectors produced by the default behavior.
const DefaultDimensions = 384

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields and is safe for
// concurrent use once configured.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// Dimensions is the length of default vectors.
	Dimensions int

	// Delay is applied before every call returns. DelayFunc wins when set.
	Delay     time.Duration
	DelayFunc func(text string) time.Duration

	mu        sync.Mutex
	failTexts map[string]error
	callCount int
	inFlight  int
	maxFlight int
	texts     []string
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Dimensions: DefaultDimensions,
		failTexts:  make(map[string]error),
	}
}

// WithFailText makes every call for text return err.
func (m *MockEmbedder) WithFailText(text string, err error) *MockEmbedder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTexts == nil {
		m.failTexts = make(map[string]error)
	}
	m.failTexts[text] = err
	return m
}

// WithEmbedTextFunc replaces the default single-text behavior.
func (m *MockEmbedder) WithEmbedTextFunc(fn func(ctx context.Context, text string) ([]float32, error)) *MockEmbedder {
	m.EmbedTextFunc = fn
	return m
}

// WithDelay sets a fixed per-call delay.
func (m *MockEmbedder) WithDelay(d time.Duration) *MockEmbedder {
	m.Delay = d
	return m
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.enter(text)
	defer m.leave()

	if err := m.wait(ctx, text); err != nil {
		return nil, err
	}

	m.mu.Lock()
	failErr, fail := m.failTexts[text]
	m.mu.Unlock()
	if fail {
		return nil, failErr
	}

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}
	return GenerateDeterministicVector(text, m.dimensions()), nil
}

// CallCount returns the number of embedding calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MaxConcurrent returns the highest number of calls observed in flight at once.
func (m *MockEmbedder) MaxConcurrent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxFlight
}

// Texts returns the texts received, in arrival order.
func (m *MockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.texts))
	copy(out, m.texts)
	return out
}

// Reset clears recorded calls and injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.maxFlight = 0
	m.texts = nil
	m.failTexts = make(map[string]error)
	m.EmbedTextFunc = nil
}

func (m *MockEmbedder) enter(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.inFlight++
	if m.inFlight > m.maxFlight {
		m.maxFlight = m.inFlight
	}
	if text != "" {
		m.texts = append(m.texts, text)
	}
}

func (m *MockEmbedder) leave() {
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()
}

func (m *MockEmbedder) wait(ctx context.Context, text string) error {
	d := m.Delay
	if m.DelayFunc != nil {
		d = m.DelayFunc(text)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *MockEmbedder) dimensions() int {
	if m.Dimensions > 0 {
		return m.Dimensions
	}
	return DefaultDimensions
}

// GenerateDeterministicVector creates a deterministic embedding vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func GenerateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 + 0.001
	}
	return vector
}
