package export

import (
	"bytes"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderImage_DrawsLayout(t *testing.T) {
	img, err := RenderImage(buildTestProject(), DefaultPNGOptions())
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, 600+32, b.Dx())
	assert.Equal(t, 300+32, b.Dy())

	const pad = 16
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(2, 2), "padding")
	assert.Equal(t, toRGBA(roomFill), img.RGBAAt(pad+300, pad+30), "room")
	assert.Equal(t, color.RGBA{209, 213, 219, 255}, img.RGBAAt(pad+60, pad+105), "rect fill")
	assert.Equal(t, toRGBA(pathColor), img.RGBAAt(pad+275, pad+140), "first path")
	assert.Equal(t, toRGBA(pathColor), img.RGBAAt(pad+275, pad+146), "second path lane")
	assert.Equal(t, toRGBA(roomFill), img.RGBAAt(pad+275, pad+143), "gap between lanes")
}

func TestRenderImage_Scale(t *testing.T) {
	opts := PNGOptions{Scale: 0.5, Padding: 0}
	img, err := RenderImage(buildTestProject(), opts)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestWritePNG_Decodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, buildTestProject(), DefaultPNGOptions()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 632, img.Bounds().Dx())
}

func TestExportPNG_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.png")
	require.NoError(t, ExportPNG(path, buildTestProject(), DefaultPNGOptions()))
	require.FileExists(t, path)
}
