package usage_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Vishal-Sandipan-Devkate/creative-content-studio-with-mcp/pkg/modeladapter/usage"
)

func TestTokenCount(t *testing.T) {
	tc := usage.TokenCount{InputTokens: 100, OutputTokens: 50}
	assert.Equal(t, 150, tc.Total())
	assert.Zero(t, usage.TokenCount{}.Total())

	delta := tc.Sub(usage.TokenCount{InputTokens: 40, OutputTokens: 10})
	assert.Equal(t, usage.TokenCount{InputTokens: 60, OutputTokens: 40}, delta)
}

func TestTracker_ZeroValue(t *testing.T) {
	var tr usage.Tracker

	last, ok := tr.Last()
	assert.False(t, ok)
	assert.Equal(t, usage.TokenCount{}, last)
	assert.Equal(t, usage.TokenCount{}, tr.Total())
	assert.Zero(t, tr.Count())
}

func TestTracker_AccumulatesCalls(t *testing.T) {
	var tr usage.Tracker

	tr.Add(usage.TokenCount{InputTokens: 120, OutputTokens: 30})
	tr.Add(usage.TokenCount{InputTokens: 200, OutputTokens: 15})

	assert.Equal(t, 2, tr.Count())
	assert.Equal(t, usage.TokenCount{InputTokens: 320, OutputTokens: 45}, tr.Total())

	last, ok := tr.Last()
	assert.True(t, ok)
	assert.Equal(t, usage.TokenCount{InputTokens: 200, OutputTokens: 15}, last)
}

func TestTracker_PerQueryDelta(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 50, OutputTokens: 5})

	before := tr.Total()
	tr.Add(usage.TokenCount{InputTokens: 70, OutputTokens: 20})
	tr.Add(usage.TokenCount{InputTokens: 90, OutputTokens: 10})

	assert.Equal(t, usage.TokenCount{InputTokens: 160, OutputTokens: 30}, tr.Total().Sub(before))
}

func TestTracker_Reset(t *testing.T) {
	var tr usage.Tracker
	tr.Add(usage.TokenCount{InputTokens: 1, OutputTokens: 1})

	tr.Reset()

	_, ok := tr.Last()
	assert.False(t, ok)
	assert.Zero(t, tr.Count())
	assert.Equal(t, usage.TokenCount{}, tr.Total())
}

func TestTracker_ConcurrentAdd(t *testing.T) {
	var (
		tr usage.Tracker
		wg sync.WaitGroup
	)

	for range 50 {
		wg.Go(func() {
			tr.Add(usage.TokenCount{InputTokens: 2, OutputTokens: 1})
		})
	}
	wg.Wait()

	assert.Equal(t, 50, tr.Count())
	assert.Equal(t, usage.TokenCount{InputTokens: 100, OutputTokens: 50}, tr.Total())
}
