package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	name   string
	body   string
	method uint16
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		require.NoError(t, err)
		if e.body != "" {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func names(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestNormalize_ExpandsImageEntries(t *testing.T) {
	data := buildZip(t,
		entry{name: "photos/"},
		entry{name: "photos/front.JPG", body: "front", method: zip.Deflate},
		entry{name: "readme.txt", body: "notes"},
		entry{name: "photos/side.png", body: "side"},
		entry{name: "thumbs/back.jpeg", body: "back", method: zip.Deflate},
		entry{name: "photos/raw.heic", body: "raw"},
	)

	res := Normalize([]File{{Name: "batch.zip", Type: "application/zip", Data: data}})

	assert.Empty(t, res.Errors)
	require.Len(t, res.Files, 3)
	assert.Equal(t, []string{"front.JPG", "side.png", "back.jpeg"}, names(res.Files))
	assert.Equal(t, "image/jpeg", res.Files[0].Type)
	assert.Equal(t, "image/png", res.Files[1].Type)
	assert.Equal(t, "image/jpeg", res.Files[2].Type)
	assert.Equal(t, "front", string(res.Files[0].Data))
	assert.EqualValues(t, 4, res.Files[1].Size())
}

func TestNormalize_PassThroughAndOrder(t *testing.T) {
	data := buildZip(t, entry{name: "b.jpg", body: "b"}, entry{name: "c.png", body: "c"})
	loose := File{Name: "a.jpg", Type: "image/jpeg", Data: []byte("a")}
	other := File{Name: "notes.txt", Type: "text/plain", Data: []byte("n")}

	res := Normalize([]File{
		loose,
		// Archive metadata type is ignored; the .zip suffix is enough.
		{Name: "SET.ZIP", Type: "application/octet-stream", Data: data},
		other,
	})

	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.png", "notes.txt"}, names(res.Files))
	assert.Equal(t, loose, res.Files[0])
	assert.Equal(t, other, res.Files[3])
}

func TestNormalize_CorruptArchiveIsIsolated(t *testing.T) {
	good := buildZip(t, entry{name: "ok.png", body: "ok"})

	// A stored entry whose bytes no longer match its checksum.
	damaged := buildZip(t, entry{name: "first.jpg", body: "fine"}, entry{name: "second.jpg", body: "UNIQUECONTENT"})
	i := bytes.Index(damaged, []byte("UNIQUECONTENT"))
	require.Positive(t, i)
	damaged[i] = 'X'

	res := Normalize([]File{
		{Name: "broken.zip", Type: "application/zip", Data: []byte("this is not a zip")},
		{Name: "loose.jpg", Type: "image/jpeg", Data: []byte("l")},
		{Name: "damaged.zip", Type: "application/x-zip-compressed", Data: damaged},
		{Name: "good.zip", Type: "application/zip", Data: good},
	})

	assert.Equal(t, []string{"loose.jpg", "ok.png"}, names(res.Files))
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "broken.zip", res.Errors[0].Source)
	assert.Equal(t, "damaged.zip", res.Errors[1].Source)
	assert.Contains(t, res.Errors[0].Error(), ExtractFailedMessage)
	assert.Error(t, res.Errors[1].Unwrap())
}

func TestNormalize_EmptyArchive(t *testing.T) {
	res := Normalize([]File{{Name: "empty.zip", Data: buildZip(t)}})
	assert.Empty(t, res.Files)
	assert.Empty(t, res.Errors)
}

func TestTypeForName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"a.jpg", "image/jpeg", true},
		{"a.JPEG", "image/jpeg", true},
		{"dir/a.Png", "image/png", true},
		{"a.gif", "", false},
		{"jpg", "", false},
	}
	for _, tt := range tests {
		got, ok := TypeForName(tt.name)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
	}
}

func TestIsArchive(t *testing.T) {
	assert.True(t, IsArchive("x.bin", "application/zip"))
	assert.True(t, IsArchive("x.bin", "application/x-zip-compressed"))
	assert.True(t, IsArchive("Photos.Zip", ""))
	assert.False(t, IsArchive("front.jpg", "image/jpeg"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, data, 0o600))
		return p
	}

	f, err := Load(write("Front.JPG", []byte("not really a jpeg")))
	require.NoError(t, err)
	assert.Equal(t, "Front.JPG", f.Name)
	assert.Equal(t, "image/jpeg", f.Type)

	f, err = Load(write("set.zip", buildZip(t)))
	require.NoError(t, err)
	assert.Equal(t, "application/zip", f.Type)

	f, err = Load(write("notes", []byte("plain text here")))
	require.NoError(t, err)
	assert.Contains(t, f.Type, "text/plain")

	_, err = Load(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)
}
