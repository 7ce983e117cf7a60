// Package archive normalizes user-selected files into a flat list of image files
// ready for upload. ZIP archives are expanded; everything else passes through.
// Nothing here touches the network.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
)

// ExtractFailedMessage is shown to the user for an archive that could not be read.
const ExtractFailedMessage = "Failed to extract ZIP file. Please check the file and try again."

// File is one file queued for upload.
type File struct {
	Name string
	Type string
	Data []byte
}

// Size is the number of content bytes.
func (f File) Size() int64 { return int64(len(f.Data)) }

// ExtractError isolates a failure to a single input archive.
type ExtractError struct {
	Source string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, ExtractFailedMessage)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Result is the normalizer output. Errors holds one entry per rejected archive.
type Result struct {
	Files  []File
	Errors []*ExtractError
}

// Normalize expands archives and passes other inputs through in selection order.
// Entries of one archive keep the archive's own order. A corrupt archive contributes
// no files and an ExtractError; the remaining inputs are still processed.
func Normalize(inputs []File) Result {
	var res Result
	for _, in := range inputs {
		if !IsArchive(in.Name, in.Type) {
			res.Files = append(res.Files, in)
			continue
		}
		files, err := extract(in)
		if err != nil {
			res.Errors = append(res.Errors, &ExtractError{Source: in.Name, Err: err})
			continue
		}
		res.Files = append(res.Files, files...)
	}
	return res
}

func extract(in File) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(in.Data), int64(len(in.Data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var out []File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}
		name := path.Base(zf.Name)
		typ, ok := TypeForName(name)
		if !ok {
			continue
		}
		data, err := readEntry(zf)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		out = append(out, File{Name: name, Type: typ, Data: data})
	}
	return out, nil
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Load reads a local file and declares its type the way a browser file picker would:
// known image extensions first, then .zip, then content sniffing.
func Load(p string) (File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return File{}, err
	}
	name := filepath.Base(p)

	typ, ok := TypeForName(name)
	switch {
	case ok:
	case strings.EqualFold(filepath.Ext(name), ".zip"):
		typ = "application/zip"
	default:
		typ = mimetype.Detect(data).String()
	}
	return File{Name: name, Type: typ, Data: data}, nil
}
