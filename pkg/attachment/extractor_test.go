package attachment

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		want        Kind
	}{
		{"declared image", "x.bin", "image/png", nil, KindImage},
		{"declared audio", "clip", "audio/mpeg", nil, KindAudio},
		{"declared video", "clip", "video/mp4", nil, KindVideo},
		{"declared text", "notes", "text/plain", nil, KindDocument},
		{"extension fallback", "photo.JPG", "", nil, KindImage},
		{"octet stream with extension", "song.flac", "application/octet-stream", nil, KindAudio},
		{"sniffed text", "unnamed", "", []byte("just some words"), KindDocument},
		{"unknown", "archive.xyz", "application/x-custom", []byte{0x00, 0x01}, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.filename, tt.contentType, tt.content))
		})
	}
}

func TestExtract(t *testing.T) {
	t.Run("image becomes base64", func(t *testing.T) {
		content := []byte{0x89, 0x50, 0x4e, 0x47}
		got := Extract("a.png", "image/png", content)

		require.True(t, got.HasImage())
		assert.Equal(t, base64.StdEncoding.EncodeToString(content), got.Images[0])
		assert.Empty(t, got.Text)
	})

	t.Run("text document is inlined", func(t *testing.T) {
		got := Extract("todo.txt", "text/plain", []byte("  buy milk \n"))

		assert.Equal(t, KindDocument, got.Kind)
		assert.Equal(t, "[Content of todo.txt]\nbuy milk", got.Text)
		assert.False(t, got.HasImage())
	})

	t.Run("long text is truncated", func(t *testing.T) {
		got := Extract("long.txt", "text/plain", []byte(strings.Repeat("a", MaxInlineRunes+10)))

		assert.True(t, strings.HasSuffix(got.Text, "[truncated]"))
	})

	t.Run("binary document gets a marker", func(t *testing.T) {
		got := Extract("report.pdf", "application/pdf", []byte("%PDF-1.4\x00\xff"))

		assert.Equal(t, "[Document uploaded: report.pdf]", got.Text)
	})

	t.Run("audio and video get markers", func(t *testing.T) {
		assert.Equal(t, "[Audio file uploaded: memo.wav]", Extract("memo.wav", "audio/wav", nil).Text)
		assert.Equal(t, "[Video file uploaded: clip.mp4]", Extract("clip.mp4", "video/mp4", nil).Text)
	})

	t.Run("unknown file", func(t *testing.T) {
		got := Extract("dir/blob.xyz", "application/x-custom", []byte{0x00})

		assert.Equal(t, KindOther, got.Kind)
		assert.Equal(t, "[File uploaded: blob.xyz]", got.Text)
	})
}

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("img"))

	got, ok := DecodeDataURI("data:image/png;base64," + payload)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	got, ok = DecodeDataURI(payload)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	_, ok = DecodeDataURI("")
	assert.False(t, ok)

	_, ok = DecodeDataURI("not base64!!")
	assert.False(t, ok)
}
