package fetch

import (
	"net/url"
	"path"
	"strings"
)

// DefaultMediaType is assumed for unrecognized or missing extensions.
// No content sniffing is performed; the extension is the whole signal.
const DefaultMediaType = "audio/mpeg"

var mediaTypesByExtension = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
}

// MediaTypeFor infers the media type from a reference's trailing path
// extension, case-insensitively.
func MediaTypeFor(reference string) string {
	trimmed := reference
	if parsed, err := url.Parse(reference); err == nil && parsed.Path != "" {
		trimmed = parsed.Path
	}

	ext := strings.ToLower(path.Ext(trimmed))
	if mediaType, ok := mediaTypesByExtension[ext]; ok {
		return mediaType
	}
	return DefaultMediaType
}
