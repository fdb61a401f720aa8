package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"with\x00null", "withnull"},
		{"\x00\x00", ""},
		{"clean", "clean"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, sanitizeInput(tc.in))
	}
}

func TestParsePathID(t *testing.T) {
	newRequest := func(id string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.SetPathValue("id", id)
		return r
	}

	id, err := parsePathID(newRequest("42"))
	require.NoError(t, err)
	require.Equal(t, 42, id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := parsePathID(newRequest(bad))
		require.Error(t, err, "id %q must be rejected", bad)
	}
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/x", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(maxUploadBytes))
	return r
}

func TestFormFileReadsWholeUpload(t *testing.T) {
	content := bytes.Repeat([]byte("a"), 4096)
	r := multipartRequest(t, "upload", "song.mp3", content)

	data, name, err := formFile(r, "upload")
	require.NoError(t, err)
	require.Equal(t, content, data)
	require.Equal(t, "song.mp3", name)
}

func TestFormFileRejectsOversizedUpload(t *testing.T) {
	content := bytes.Repeat([]byte("a"), maxUploadBytes+1024)
	r := multipartRequest(t, "upload", "huge.wav", content)

	_, _, err := formFile(r, "upload")
	require.Error(t, err, "an upload past the size limit must fail, never truncate")
	require.Contains(t, err.Error(), "exceeds")
}

func TestFormFileMissing(t *testing.T) {
	// A plain form post has no file parts at all
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("a=b"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, r.ParseForm())

	data, name, err := formFile(r, "upload")
	require.NoError(t, err)
	require.Nil(t, data)
	require.Empty(t, name)
}
