package openai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/jurist/ai"
	"github.com/poiesic/jurist/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyEmbedder_SingleInitialization(t *testing.T) {
	var builds atomic.Int32
	gate := make(chan struct{})

	lazy := NewLazyEmbedder(func() (ai.Embedder, error) {
		builds.Add(1)
		<-gate
		return mock.NewMockEmbedder(), nil
	})

	ctx := context.Background()
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = lazy.EmbedText(ctx, "concurrent first use")
		}(i)
	}

	// Let every caller reach the shared attempt before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), builds.Load(), "all callers must share one initialization")
	assert.True(t, lazy.Ready())
}

func TestLazyEmbedder_RetryAfterFailure(t *testing.T) {
	var builds atomic.Int32
	bootErr := errors.New("model unavailable")

	lazy := NewLazyEmbedder(func() (ai.Embedder, error) {
		if builds.Add(1) == 1 {
			return nil, bootErr
		}
		return mock.NewMockEmbedder(), nil
	})

	ctx := context.Background()

	_, err := lazy.EmbedText(ctx, "first try")
	require.ErrorIs(t, err, bootErr)
	assert.False(t, lazy.Ready())

	// The failed attempt must have been discarded, so this retries.
	vector, err := lazy.EmbedText(ctx, "second try")
	require.NoError(t, err)
	assert.NotEmpty(t, vector)
	assert.Equal(t, int32(2), builds.Load())
	assert.True(t, lazy.Ready())
}

func TestLazyEmbedder_SuccessIsMemoized(t *testing.T) {
	var builds atomic.Int32

	lazy := NewLazyEmbedder(func() (ai.Embedder, error) {
		builds.Add(1)
		return mock.NewMockEmbedder(), nil
	})

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := lazy.EmbedText(ctx, "repeated use")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), builds.Load())
}

func TestLazyEmbedder_CanceledWaiter(t *testing.T) {
	gate := make(chan struct{})
	lazy := NewLazyEmbedder(func() (ai.Embedder, error) {
		<-gate
		return mock.NewMockEmbedder(), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lazy.EmbedText(ctx, "canceled")
	assert.ErrorIs(t, err, context.Canceled)

	// The attempt keeps running for other callers.
	close(gate)
	_, err = lazy.EmbedText(context.Background(), "after cancel")
	assert.NoError(t, err)
}

func TestLazyEmbedder_EmbedTexts(t *testing.T) {
	lazy := NewLazyEmbedder(func() (ai.Embedder, error) {
		return mock.NewMockEmbedder(), nil
	})

	vectors, err := lazy.EmbedTexts(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}
