package tray

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIcon(t *testing.T) {
	data, err := renderIcon()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())
	assert.Equal(t, iconSize, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corners are transparent")
	_, _, _, a = img.At(iconSize/2, 4).RGBA()
	assert.NotZero(t, a)
}

func TestIconBytes(t *testing.T) {
	data, err := iconBytes()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestFormatTooltip(t *testing.T) {
	assert.Equal(t, "CFD Shell: Running on port 7113", formatTooltip("Running on port 7113"))
}
