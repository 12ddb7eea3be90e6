package mock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedder()
	a, err := m.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	b, err := m.EmbedText(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, DefaultDimensions)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockEmbedder_FailText(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockEmbedder().WithFailText("bad", boom)

	_, err := m.EmbedText(context.Background(), "bad")
	assert.ErrorIs(t, err, boom)

	_, err = m.EmbedText(context.Background(), "good")
	assert.NoError(t, err)
}

func TestMockEmbedder_ConcurrentUse(t *testing.T) {
	m := NewMockEmbedder().WithDelay(5 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(context.Background(), "x")
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, m.CallCount())
	assert.GreaterOrEqual(t, m.MaxConcurrent(), 1)
	assert.Len(t, m.Texts(), 16)
}

func TestMockEmbedder_DelayHonorsContext(t *testing.T) {
	m := NewMockEmbedder().WithDelay(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProviderWithEmbedder(NewMockEmbedder())
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}
