package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeardownReleasesInReverse(t *testing.T) {
	var order []string
	td := &Teardown{}
	td.Push("window", func() { order = append(order, "window") })
	td.Push("device", func() { order = append(order, "device") })
	td.Push("swapchain", func() { order = append(order, "swapchain") })
	assert.Equal(t, 3, td.Len())

	td.Release()
	assert.Equal(t, []string{"swapchain", "device", "window"}, order)
	assert.Zero(t, td.Len())

	td.Release()
	assert.Len(t, order, 3, "second release is a no-op")
}

func TestTeardownContinuesAfterPanic(t *testing.T) {
	var released []string
	td := &Teardown{}
	td.Push("first", func() { released = append(released, "first") })
	td.Push("broken", func() { panic("boom") })
	td.Push("last", func() { released = append(released, "last") })

	assert.NotPanics(t, td.Release)
	assert.Equal(t, []string{"last", "first"}, released)
}
