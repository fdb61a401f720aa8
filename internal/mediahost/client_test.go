package mediahost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"yourtune/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.MediaHostConfig {
	return &config.MediaHostConfig{
		BaseURL:              baseURL,
		CloudName:            "testcloud",
		APIKey:               "key",
		APISecret:            "secret",
		UploadTimeoutSeconds: 5,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.MediaHostConfig)
	}{
		{"MissingBaseURL", func(c *config.MediaHostConfig) { c.BaseURL = "" }},
		{"MissingCloudName", func(c *config.MediaHostConfig) { c.CloudName = "" }},
		{"MissingAPIKey", func(c *config.MediaHostConfig) { c.APIKey = "" }},
		{"MissingAPISecret", func(c *config.MediaHostConfig) { c.APISecret = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig("https://host.example.com")
			tc.mutate(cfg)
			_, err := NewClient(cfg, testLogger())
			require.Error(t, err)
		})
	}
}

func TestUploadImage(t *testing.T) {
	var gotPath string
	var gotFields map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFields = map[string]string{}
		for k := range r.MultipartForm.Value {
			gotFields[k] = r.FormValue(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://cdn.example.com/abc.png","url":"http://cdn.example.com/abc.png"}`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(ts.URL), testLogger())
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), []byte("png-bytes"), "cover.png", KindImage)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/abc.png", url, "secure URL wins over plain URL")

	require.Equal(t, "/v1_1/testcloud/image/upload", gotPath)
	require.NotEmpty(t, gotFields["public_id"])
	require.Equal(t, "key", gotFields["api_key"])
	require.NotEmpty(t, gotFields["timestamp"])
	require.NotEmpty(t, gotFields["signature"])
	require.Empty(t, gotFields["use_filename"], "image uploads carry no processing hints")
}

func TestUploadMediaCarriesHints(t *testing.T) {
	var gotPath string
	var gotFields map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFields = map[string]string{}
		for k := range r.MultipartForm.Value {
			gotFields[k] = r.FormValue(k)
		}
		w.Write([]byte(`{"url":"http://cdn.example.com/song.mp3"}`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(ts.URL), testLogger())
	require.NoError(t, err)

	url, err := client.Upload(context.Background(), []byte("not-really-audio"), "song.mp3", KindMedia)
	require.NoError(t, err)
	require.Equal(t, "http://cdn.example.com/song.mp3", url)

	require.Equal(t, "/v1_1/testcloud/video/upload", gotPath)
	require.Equal(t, "true", gotFields["use_filename"])
}

func TestUploadFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(ts.URL), testLogger())
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), []byte("data"), "x.png", KindImage)
	require.Error(t, err, "a rejected upload must surface so the dependent create aborts")
}

func TestUploadEmptyBuffer(t *testing.T) {
	client, err := NewClient(testConfig("https://host.example.com"), testLogger())
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), nil, "x.png", KindImage)
	require.Error(t, err)
}

func TestUploadResponseWithoutURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client, err := NewClient(testConfig(ts.URL), testLogger())
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), []byte("data"), "x.png", KindImage)
	require.Error(t, err)
}

func TestSignatureIsDeterministic(t *testing.T) {
	client, err := NewClient(testConfig("https://host.example.com"), testLogger())
	require.NoError(t, err)

	fields := map[string]string{
		"public_id": "fixed",
		"timestamp": "1700000000",
		"api_key":   "key",
	}
	first := client.signature(fields)
	second := client.signature(fields)
	require.Equal(t, first, second)
	require.Len(t, first, 64, "hex-encoded SHA-256")

	// api_key stays out of the signed string
	delete(fields, "api_key")
	require.Equal(t, first, client.signature(fields))
}
