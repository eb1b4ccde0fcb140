package view

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/livediff/internal/diff"
	"github.com/dshills/livediff/internal/reactive"
)

func TestSlot(t *testing.T) {
	rt := reactive.NewRuntime()
	require.NoError(t, rt.Start())
	defer rt.Stop(context.Background())

	slot := NewSlot(rt)
	assert.Equal(t, Normal{}, slot.Get())
	_, ok := slot.Diff()
	assert.False(t, ok)

	var fired atomic.Int32
	slot.Subscribe(func() { fired.Add(1) })

	result, ok := diff.ComputeStrings("a\n", "b\n", diff.DefaultOptions())
	require.True(t, ok)
	slot.Set(Diff{IsRight: true, Changes: result})

	got, ok := slot.Diff()
	require.True(t, ok)
	assert.True(t, got.IsRight)
	assert.Same(t, result, got.Changes)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, rt.Flush(ctx))
	assert.Equal(t, int32(1), fired.Load())
}
