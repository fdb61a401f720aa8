package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// maxUploadBytes bounds in-memory multipart parsing.
const maxUploadBytes = 32 << 20

// parsePathID validates the {id} path parameter as a positive integer.
func parsePathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("id is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("id must be a valid integer")
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}

// sanitizeInput strips null bytes and surrounding whitespace from form
// values.
func sanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	return strings.TrimSpace(input)
}

// parseUploadForm parses a create-form submission. Forms are normally
// multipart because of the file inputs, but a submission without a file
// part still parses.
func parseUploadForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadBytes)
	if err == http.ErrNotMultipart {
		return r.ParseForm()
	}
	return err
}

// formFile reads an optional multipart file field fully into memory,
// matching the in-memory buffer the upload bridge expects. A missing file
// yields (nil, "", nil): the caller skips the bridge and uses an empty URL.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload %q: %w", field, err)
	}
	defer file.Close()

	// Read one byte past the limit so an oversized part fails instead of
	// being truncated and uploaded corrupt
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to buffer upload %q: %w", field, err)
	}
	if len(data) > maxUploadBytes {
		return nil, "", fmt.Errorf("upload %q exceeds the %d byte limit", field, maxUploadBytes)
	}
	if len(data) == 0 {
		return nil, "", nil
	}
	return data, header.Filename, nil
}
