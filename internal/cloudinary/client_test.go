package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	c := New("demo", "key", "secret", "cards")
	c.BaseURL = url
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestUploadPhotoSignsAndPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "key", r.FormValue("api_key"))
		assert.Equal(t, "card_1446RGUST23", r.FormValue("public_id"))
		assert.Equal(t, "true", r.FormValue("overwrite"))
		assert.Equal(t, "cards", r.FormValue("folder"))
		assert.Equal(t, "data:image/png;base64,AAAA", r.FormValue("file"))

		payload := "folder=cards&overwrite=true&public_id=card_1446RGUST23&timestamp=1700000000secret"
		assert.Equal(t, fmt.Sprintf("%x", sha1.Sum([]byte(payload))), r.FormValue("signature"))

		_, _ = w.Write([]byte(`{"public_id":"cards/card_1446RGUST23","secure_url":"https://cdn.example/cards/card_1446RGUST23.png","width":10}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).UploadPhoto(context.Background(), "data:image/png;base64,AAAA", "1446RGUST23")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/cards/card_1446RGUST23.png", res.SecureURL)
	assert.Equal(t, 10, res.Width)
}

func TestUploadPhotoFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid Signature"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).UploadPhoto(context.Background(), "data:image/png;base64,AAAA", "1")
	assert.ErrorContains(t, err, "upload failed (401)")
}

func TestPublicID(t *testing.T) {
	assert.Equal(t, "card_1446RGUST23", PublicID(" 1446RGUST23 "))
	assert.Equal(t, "card_RGU_2023_17", PublicID("RGU/2023 17"))
}
