// Package attachment turns an uploaded file into model input: images pass
// through as base64, text documents are inlined, anything else becomes a
// short marker the model can acknowledge.
package attachment

import (
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindOther    Kind = "other"

	// MaxInlineRunes bounds how much of a text document is sent to the model.
	MaxInlineRunes = 20000
)

var extensionKinds = map[string]Kind{
	".png": KindImage, ".jpg": KindImage, ".jpeg": KindImage, ".gif": KindImage, ".bmp": KindImage, ".webp": KindImage,
	".mp3": KindAudio, ".wav": KindAudio, ".ogg": KindAudio, ".m4a": KindAudio, ".flac": KindAudio,
	".mp4": KindVideo, ".avi": KindVideo, ".mov": KindVideo, ".mkv": KindVideo,
	".txt": KindDocument, ".md": KindDocument, ".csv": KindDocument, ".json": KindDocument,
	".pdf": KindDocument, ".doc": KindDocument, ".docx": KindDocument,
}

type Extracted struct {
	Kind   Kind
	Text   string
	Images []string
}

// HasImage reports whether the extracted input carries an image payload.
func (e Extracted) HasImage() bool {
	return len(e.Images) > 0
}

// Classify decides the kind from the declared content type, then the file
// extension, then the content itself.
func Classify(filename, contentType string, content []byte) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" || ct == "application/octet-stream" {
		if k, ok := extensionKinds[strings.ToLower(filepath.Ext(filename))]; ok {
			return k
		}
		ct = mimetype.Detect(content).String()
	}

	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case strings.HasPrefix(ct, "audio/"):
		return KindAudio
	case strings.HasPrefix(ct, "video/"):
		return KindVideo
	case strings.HasPrefix(ct, "text/"), ct == "application/json", ct == "application/pdf",
		strings.Contains(ct, "msword"), strings.Contains(ct, "wordprocessingml"):
		return KindDocument
	}

	if k, ok := extensionKinds[strings.ToLower(filepath.Ext(filename))]; ok {
		return k
	}
	return KindOther
}

func Extract(filename, contentType string, content []byte) Extracted {
	name := filepath.Base(filename)
	if name == "." || name == "/" {
		name = "attachment"
	}

	switch kind := Classify(filename, contentType, content); kind {
	case KindImage:
		return Extracted{Kind: kind, Images: []string{base64.StdEncoding.EncodeToString(content)}}
	case KindAudio:
		return Extracted{Kind: kind, Text: fmt.Sprintf("[Audio file uploaded: %s]", name)}
	case KindVideo:
		return Extracted{Kind: kind, Text: fmt.Sprintf("[Video file uploaded: %s]", name)}
	case KindDocument:
		if text, ok := plainText(content); ok {
			return Extracted{Kind: kind, Text: fmt.Sprintf("[Content of %s]\n%s", name, text)}
		}
		return Extracted{Kind: kind, Text: fmt.Sprintf("[Document uploaded: %s]", name)}
	default:
		return Extracted{Kind: KindOther, Text: fmt.Sprintf("[File uploaded: %s]", name)}
	}
}

// plainText returns the content when it is valid UTF-8 text, truncated to
// MaxInlineRunes.
func plainText(content []byte) (string, bool) {
	if len(content) == 0 || !utf8.Valid(content) {
		return "", false
	}
	if !strings.HasPrefix(mimetype.Detect(content).String(), "text/") {
		return "", false
	}

	text := strings.TrimSpace(string(content))
	if utf8.RuneCountInString(text) > MaxInlineRunes {
		text = string([]rune(text)[:MaxInlineRunes]) + "\n[truncated]"
	}
	return text, true
}

// DecodeDataURI strips an optional "data:<type>;base64," prefix and checks
// that the rest is valid base64.
func DecodeDataURI(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if strings.HasPrefix(value, "data:") {
		i := strings.Index(value, ",")
		if i < 0 {
			return "", false
		}
		value = value[i+1:]
	}
	if _, err := base64.StdEncoding.DecodeString(value); err != nil {
		return "", false
	}
	return value, true
}
