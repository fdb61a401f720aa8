package mediahost

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"yourtune/internal/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Kind selects the media host's processing pipeline for an upload.
type Kind string

const (
	// KindImage - static images (news feature images, album covers).
	KindImage Kind = "image"
	// KindMedia - audio/video assets; the host transcodes these, so the
	// upload carries extra processing hints.
	KindMedia Kind = "video"
)

// Client streams in-memory file buffers to the external media host and
// resolves them to public URLs. Records are only written after the URL
// resolves; a failed upload must abort the dependent create, so Upload
// never swallows errors.
type Client struct {
	cfg    *config.MediaHostConfig
	http   *http.Client
	logger *logrus.Logger
	probe  *Probe
}

// NewClient creates a media host client. The config must carry the cloud
// name and API credentials.
func NewClient(cfg *config.MediaHostConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.CloudName == "" {
		return nil, fmt.Errorf("media host base URL and cloud name are required")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("media host API credentials are required")
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: time.Duration(cfg.UploadTimeoutSeconds) * time.Second},
		logger: logger,
		probe:  NewProbe(logger),
	}, nil
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the buffer to the media host and returns the public URL of
// the stored asset. Media uploads attach best-effort probe results
// (duration, embedded tags) as processing hints; image uploads do not.
func (c *Client) Upload(ctx context.Context, data []byte, filename string, kind Kind) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("upload buffer is empty")
	}

	fields := map[string]string{
		"public_id": uuid.NewString(),
		"api_key":   c.cfg.APIKey,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if kind == KindMedia {
		fields["use_filename"] = "true"
		for k, v := range c.probe.Hints(data, filename) {
			fields[k] = v
		}
	}
	fields["signature"] = c.signature(fields)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to write upload field %s: %w", k, err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create upload part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to buffer upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.CloudName, kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("kind", kind).Error("Upload request failed")
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"kind":   kind,
			"body":   string(raw),
		}).Error("Media host rejected upload")
		return "", fmt.Errorf("media host rejected upload: status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	url := parsed.SecureURL
	if url == "" {
		url = parsed.URL
	}
	if url == "" {
		return "", fmt.Errorf("upload response carried no URL")
	}

	c.logger.WithFields(logrus.Fields{
		"kind":     kind,
		"filename": filename,
		"size":     len(data),
		"took":     time.Since(start).Round(time.Millisecond),
	}).Info("Uploaded asset to media host")

	return url, nil
}

// signature computes the HMAC-SHA256 over the sorted request fields
// (excluding api_key, which travels alongside) keyed by the API secret,
// matching what the host verifies.
func (c *Client) signature(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "api_key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}

	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
