package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field, filename, contentType, body string
}

func buildBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, w.WriteField(p.field, p.body))
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.Boundary()
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	body, boundary := buildBody(t,
		part{field: "busId", body: "42"},
		part{field: "busId", body: "43"},
		part{field: "files", filename: "front.jpg", contentType: "image/jpeg", body: "jpeg-data"},
		part{field: "files", filename: "side.png", contentType: "image/png", body: "png"},
	)

	form, err := Parse(body, boundary, Limits{MaxFileSize: 100, MaxTotalSize: 100}, dir)
	require.NoError(t, err)

	assert.Equal(t, "42", form.Value("busId"))
	assert.Equal(t, "", form.Value("batchKey"))
	require.Len(t, form.Files["files"], 2)

	front := form.Files["files"][0]
	assert.Equal(t, "front.jpg", front.Filename)
	assert.Equal(t, "image/jpeg", front.ContentType)
	assert.EqualValues(t, 9, front.Size)
	data, err := os.ReadFile(front.Path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-data", string(data))
	assert.EqualValues(t, 12, form.TotalSize())

	form.Cleanup()
	_, err = os.Stat(front.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestParse_Limits(t *testing.T) {
	tests := []struct {
		name    string
		limits  Limits
		parts   []part
		wantErr error
	}{
		{
			name:   "file exactly at limit",
			limits: Limits{MaxFileSize: 4, MaxTotalSize: 8},
			parts:  []part{{field: "files", filename: "a.jpg", body: "aaaa"}, {field: "files", filename: "b.jpg", body: "bbbb"}},
		},
		{
			name:    "single file over limit",
			limits:  Limits{MaxFileSize: 4, MaxTotalSize: 100},
			parts:   []part{{field: "files", filename: "a.jpg", body: "aaaaa"}},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "aggregate over limit",
			limits:  Limits{MaxFileSize: 4, MaxTotalSize: 6},
			parts:   []part{{field: "files", filename: "a.jpg", body: "aaaa"}, {field: "files", filename: "b.jpg", body: "bbb"}},
			wantErr: ErrTotalTooLarge,
		},
		{
			name:   "no limits",
			limits: Limits{},
			parts:  []part{{field: "files", filename: "a.jpg", body: strings.Repeat("x", 4096)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			body, boundary := buildBody(t, tt.parts...)

			form, err := Parse(body, boundary, tt.limits, dir)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, errors.Is(err, ErrLimitExceeded))
				assert.Nil(t, form)

				left, _ := os.ReadDir(dir)
				assert.Empty(t, left, "temp files must be removed on failure")
				return
			}
			require.NoError(t, err)
			form.Cleanup()
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	dir := t.TempDir()
	body := strings.NewReader("--xyz\r\nContent-Disposition: form-data; name=\"files\"; filename=\"a.jpg\"\r\n\r\nunterminated")

	form, err := Parse(body, "xyz", Limits{}, dir)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrLimitExceeded))
	assert.Nil(t, form)
}

func TestParse_OversizedField(t *testing.T) {
	body, boundary := buildBody(t, part{field: "busId", body: strings.Repeat("9", maxFieldSize+1)})
	_, err := Parse(body, boundary, Limits{}, t.TempDir())
	assert.ErrorContains(t, err, "exceeds")
}

func TestBoundary(t *testing.T) {
	assert.Equal(t, "abc", Boundary("multipart/form-data; boundary=abc"))
	assert.Equal(t, "", Boundary("application/json"))
	assert.Equal(t, "", Boundary(""))
	assert.Equal(t, "", Boundary("multipart/form-data"))
}
