package archive

import (
	"path"
	"strings"
)

// ImageTypes maps accepted image extensions to the MIME type sent with the upload.
// Types reported by archive metadata are never trusted; this table is.
var ImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Archive content types recognised on input.
var archiveTypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
}

// TypeForName returns the image MIME type for a filename, case-insensitively.
func TypeForName(name string) (string, bool) {
	t, ok := ImageTypes[strings.ToLower(path.Ext(name))]
	return t, ok
}

// IsArchive reports whether an input should be opened as a ZIP archive.
func IsArchive(name, declaredType string) bool {
	return archiveTypes[declaredType] || strings.HasSuffix(strings.ToLower(name), ".zip")
}
