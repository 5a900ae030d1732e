package media

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vendora/storefront-go/internal/apitest"
	"github.com/vendora/storefront-go/transport"
)

func TestUploadReturnsProviderURL(t *testing.T) {
	srv := apitest.NewMediaServer()
	t.Cleanup(srv.Close)

	client := transport.New(transport.Config{BaseURL: srv.URL, Log: zerolog.Nop()})
	u := New(client, zerolog.Nop())

	url, err := u.Upload(context.Background(), "file", "avatar.png", strings.NewReader("fake-png-bytes"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://cdn.apitest.local/avatar.png" {
		t.Fatalf("unexpected URL %q", url)
	}
}

func TestUploadRejectedWithoutFileField(t *testing.T) {
	srv := apitest.NewMediaServer()
	t.Cleanup(srv.Close)

	client := transport.New(transport.Config{BaseURL: srv.URL, Log: zerolog.Nop()})
	u := New(client, zerolog.Nop())

	// The provider expects the field name "file"; anything else is a 400.
	if _, err := u.Upload(context.Background(), "wrong", "avatar.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected an error for the wrong field name")
	}
}
