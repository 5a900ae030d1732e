// Package media uploads binary assets (avatars, product and service images)
// directly to the configured media provider, bypassing the marketplace API.
// The provider answers with a stable URL that is then stored as a plain
// field value on a domain resource.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/transport"
)

// Uploader performs direct-to-provider multipart uploads.
type Uploader struct {
	client *transport.Client
	log    zerolog.Logger
}

// New builds an Uploader on top of a transport client pointed at the media
// provider's base URL (not the marketplace API).
func New(client *transport.Client, log zerolog.Logger) *Uploader {
	return &Uploader{client: client, log: log}
}

// uploadResponse is the provider's answer.
type uploadResponse struct {
	URL string `json:"url"`
}

// Upload streams one file as multipart form data and returns the stable URL
// the provider assigned. The field name is provider-defined (usually "file").
func (u *Uploader) Upload(ctx context.Context, field, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return "", fmt.Errorf("media: build form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("media: read file: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("media: finalize form: %w", err)
	}

	var resp uploadResponse
	if err := u.client.PostMultipart(ctx, "", "", &body, w.FormDataContentType(), &resp); err != nil {
		return "", err
	}

	u.log.Debug().Str("filename", filename).Str("url", resp.URL).Msg("media uploaded")
	return resp.URL, nil
}
