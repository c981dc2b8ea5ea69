package images

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorageWithSubdir(t.TempDir(), "uploads/recipe")
	require.NoError(t, err)
	return storage
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and an IHDR chunk claiming w x h RGBA,
// with no image data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	writePNGChunk(&buf, "IHDR", ihdr)
	return buf.Bytes()
}

func pngWithIEND(w, h uint32) []byte {
	buf := bytes.NewBuffer(pngHeader(w, h))
	writePNGChunk(buf, "IEND", nil)
	return buf.Bytes()
}

func writePNGChunk(buf *bytes.Buffer, typ string, data []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(typ), data...)))
}

func TestNewStorageWithSubdir(t *testing.T) {
	t.Run("creates nested subdirectory", func(t *testing.T) {
		tmpDir := t.TempDir()

		storage, err := NewStorageWithSubdir(tmpDir, "uploads/recipe")
		require.NoError(t, err)
		require.NotNil(t, storage)
		assert.Equal(t, tmpDir, storage.Root())

		info, err := os.Stat(filepath.Join(tmpDir, "uploads", "recipe"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorageWithSubdir("", "uploads")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})

	t.Run("returns error for empty subdir", func(t *testing.T) {
		_, err := NewStorageWithSubdir(t.TempDir(), "")
		assert.Error(t, err)
	})

	t.Run("rejects escaping subdir", func(t *testing.T) {
		_, err := NewStorageWithSubdir(t.TempDir(), "../outside")
		assert.Error(t, err)
	})
}

func TestDetectFormat(t *testing.T) {
	var jpg, gf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, testImage(4, 4), nil))
	require.NoError(t, gif.Encode(&gf, testImage(4, 4), nil))

	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"png", encodePNG(t, 4, 4), "png", false},
		{"jpeg", jpg.Bytes(), "jpg", false},
		{"gif", gf.Bytes(), "gif", false},
		{"text", []byte("notimage"), "", true},
		{"empty", nil, "", true},
		{"zero width", pngWithIEND(0, 10), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat_SizeLimits(t *testing.T) {
	tests := []struct {
		name    string
		w, h    uint32
		wantErr bool
	}{
		{"wide but within budget", MaxDimension, 100, false},
		{"side over maximum", MaxDimension + 1, 1, true},
		{"pixel budget exceeded", 7000, 7000, true},
		{"huge header", 40000, 40000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := DetectFormat(pngWithIEND(tt.w, tt.h))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrImageTooLarge)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "png", ext)
		})
	}
}

func TestDecode(t *testing.T) {
	img, ext, err := Decode(encodePNG(t, 5, 3))
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
	assert.Equal(t, image.Rect(0, 0, 5, 3), img.Bounds())

	_, _, err = Decode(pngWithIEND(40000, 40000))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestStorage_Save(t *testing.T) {
	t.Run("saves under uuid name with format extension", func(t *testing.T) {
		storage := setupTestStorage(t)
		data := encodePNG(t, 8, 8)

		rel, img, err := storage.Save(data)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
		assert.True(t, strings.HasPrefix(rel, "uploads/recipe/"), rel)
		assert.True(t, strings.HasSuffix(rel, ".png"), rel)

		got, err := os.ReadFile(storage.Path(rel))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("each save gets a new name", func(t *testing.T) {
		storage := setupTestStorage(t)
		data := encodePNG(t, 8, 8)

		a, _, err := storage.Save(data)
		require.NoError(t, err)
		b, _, err := storage.Save(data)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("rejects non-image data", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, _, err := storage.Save([]byte("notimage"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("rejects corrupt body behind a valid header", func(t *testing.T) {
		storage := setupTestStorage(t)
		valid := encodePNG(t, 16, 16)

		for _, data := range [][]byte{
			valid[:len(valid)/2],
			append(pngHeader(16, 16), []byte("this is not image data at all")...),
		} {
			_, _, err := storage.Save(data)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
		}

		entries, err := os.ReadDir(storage.Path("uploads/recipe"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rejects oversized dimensions without decoding", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, _, err := storage.Save(pngWithIEND(40000, 40000))
		assert.ErrorIs(t, err, ErrImageTooLarge)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := setupTestStorage(t)

		_, _, err := storage.Save(nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "image data cannot be empty")
	})
}

func TestStorage_Delete(t *testing.T) {
	t.Run("deletes existing image", func(t *testing.T) {
		storage := setupTestStorage(t)

		rel, _, err := storage.Save(encodePNG(t, 2, 2))
		require.NoError(t, err)
		require.True(t, storage.Exists(rel))

		require.NoError(t, storage.Delete(rel))
		assert.False(t, storage.Exists(rel))
	})

	t.Run("succeeds when image does not exist", func(t *testing.T) {
		storage := setupTestStorage(t)

		assert.NoError(t, storage.Delete("uploads/recipe/missing.png"))
	})

	t.Run("rejects empty and escaping paths", func(t *testing.T) {
		storage := setupTestStorage(t)

		assert.Error(t, storage.Delete(""))
		assert.Error(t, storage.Delete("../../etc/passwd"))
	})
}

func TestStorage_Exists(t *testing.T) {
	storage := setupTestStorage(t)

	assert.False(t, storage.Exists(""))
	assert.False(t, storage.Exists("uploads/recipe/none.png"))
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testImage(200, 100))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	small, err := ComputeBlurHash(testImage(3, 3))
	require.NoError(t, err)
	assert.NotEmpty(t, small)
}

func TestResizeForBlurHash(t *testing.T) {
	small := testImage(10, 10)
	assert.Same(t, image.Image(small), resizeForBlurHash(small))

	wide := resizeForBlurHash(testImage(640, 320))
	assert.Equal(t, 64, wide.Bounds().Dx())
	assert.Equal(t, 32, wide.Bounds().Dy())

	tall := resizeForBlurHash(testImage(10, 1000))
	assert.Equal(t, 1, tall.Bounds().Dx())
	assert.Equal(t, 64, tall.Bounds().Dy())
}
