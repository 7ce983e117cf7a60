// Package upload parses streamed multipart/form-data bodies into form values and
// file parts spooled to temporary files, under per-file and aggregate size limits.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"busgallery/internal/model"
)

// maxFieldSize bounds non-file form values.
const maxFieldSize = 1 << 20

var (
	// ErrLimitExceeded is the parent of every size-limit error.
	ErrLimitExceeded = errors.New("upload size limit exceeded")
	ErrFileTooLarge  = fmt.Errorf("%w: file too large", ErrLimitExceeded)
	ErrTotalTooLarge = fmt.Errorf("%w: total upload too large", ErrLimitExceeded)
)

// Limits bounds a single request. Zero disables a limit.
type Limits struct {
	MaxFileSize  int64
	MaxTotalSize int64
}

// Form is a parsed multipart body. Call Cleanup to remove spooled files.
type Form struct {
	Values map[string][]string
	Files  map[string][]model.FileEntry

	paths []string
}

// Value returns the first value of a field, normalising multi-value fields.
func (f *Form) Value(name string) string {
	if vs := f.Values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// TotalSize is the sum of all spooled file sizes.
func (f *Form) TotalSize() int64 {
	var n int64
	for _, entries := range f.Files {
		for _, e := range entries {
			n += e.Size
		}
	}
	return n
}

// Cleanup removes every temporary file created for this form.
func (f *Form) Cleanup() {
	for _, p := range f.paths {
		_ = os.Remove(p)
	}
	f.paths = nil
}

// Boundary extracts the multipart boundary from a Content-Type header.
// It returns "" when the request is not multipart/form-data.
func Boundary(contentType string) string {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return ""
	}
	return params["boundary"]
}

// Parse reads the multipart stream part by part, never holding a whole file in memory.
// File parts are written to temp files in dir. Limit violations return an error wrapping
// ErrLimitExceeded; any other failure is a parse error. On error nothing is left on disk.
func Parse(r io.Reader, boundary string, limits Limits, dir string) (*Form, error) {
	form := &Form{
		Values: make(map[string][]string),
		Files:  make(map[string][]model.FileEntry),
	}

	mr := multipart.NewReader(r, boundary)
	var total int64
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			form.Cleanup()
			return nil, err
		}

		name := part.FormName()
		if part.FileName() == "" {
			v, err := readField(part)
			part.Close()
			if err != nil {
				form.Cleanup()
				return nil, err
			}
			form.Values[name] = append(form.Values[name], v)
			continue
		}

		entry, err := spool(part, dir, limits, total, form)
		part.Close()
		if err != nil {
			form.Cleanup()
			return nil, err
		}
		total += entry.Size
		form.Files[name] = append(form.Files[name], entry)
	}
}

func readField(part *multipart.Part) (string, error) {
	b, err := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
	if err != nil {
		return "", err
	}
	if len(b) > maxFieldSize {
		return "", fmt.Errorf("form field %q exceeds %d bytes", part.FormName(), maxFieldSize)
	}
	return string(b), nil
}

func spool(part *multipart.Part, dir string, limits Limits, total int64, form *Form) (model.FileEntry, error) {
	filename := part.FileName()

	f, err := os.CreateTemp(dir, "upload-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return model.FileEntry{}, fmt.Errorf("create temp file: %w", err)
	}
	form.paths = append(form.paths, f.Name())
	defer f.Close()

	budget := int64(-1)
	if limits.MaxFileSize > 0 {
		budget = limits.MaxFileSize
	}
	if limits.MaxTotalSize > 0 {
		remaining := limits.MaxTotalSize - total
		if remaining < 0 {
			remaining = 0
		}
		if budget < 0 || remaining < budget {
			budget = remaining
		}
	}

	var src io.Reader = part
	if budget >= 0 {
		// One extra byte tells "exactly at the limit" apart from "over it".
		src = io.LimitReader(part, budget+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return model.FileEntry{}, err
	}
	if limits.MaxFileSize > 0 && n > limits.MaxFileSize {
		return model.FileEntry{}, ErrFileTooLarge
	}
	if limits.MaxTotalSize > 0 && total+n > limits.MaxTotalSize {
		return model.FileEntry{}, ErrTotalTooLarge
	}

	return model.FileEntry{
		Filename:    filename,
		ContentType: part.Header.Get("Content-Type"),
		Size:        n,
		Path:        f.Name(),
	}, nil
}
