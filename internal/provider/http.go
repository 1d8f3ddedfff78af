package provider

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// checkResponse turns a non-2xx response into an error carrying the status
// and body. Status codes with a sentinel are wrapped so callers can errors.Is.
func checkResponse(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	body := strings.TrimSpace(string(bodyBytes))

	switch resp.StatusCode {
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%s: %w (413): file exceeds maximum size limit: %s", op, ErrFileTooLarge, body)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w (404): %s", op, ErrNotFound, body)
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w (401): %s", op, ErrUnauthorized, body)
	}
	return fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, body)
}

// multipartFile builds a multipart body with a purpose field and one file part.
func multipartFile(filename string, r io.Reader, purpose string) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if purpose != "" {
		if err := writer.WriteField("purpose", purpose); err != nil {
			return nil, "", fmt.Errorf("failed to write purpose field: %w", err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", MIMEType(filename))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
