package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// JSONContentType is the content type of archived reports.
const JSONContentType = "application/json"

// DetectContentType returns providedType when set, otherwise the MIME type
// registered for the key's extension, falling back to
// "application/octet-stream".
func DetectContentType(providedType, key string) string {
	if providedType != "" {
		return providedType
	}

	ext := strings.ToLower(filepath.Ext(key))
	if ext == ".json" {
		return JSONContentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}

	return "application/octet-stream"
}
