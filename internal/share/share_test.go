package share

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func swapEndpoint(t *testing.T, endpoint *string, url string) {
	t.Helper()
	old := *endpoint
	*endpoint = url
	t.Cleanup(func() { *endpoint = old })
}

func TestParseService(t *testing.T) {
	cases := []struct {
		in   string
		want Service
		ok   bool
	}{
		{"catbox", Catbox, true},
		{" Imgur ", Imgur, true},
		{"GIPHY", Giphy, true},
		{"vimeo", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseService(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParseService(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("ParseService(%q) should fail", tc.in)
		}
	}
}

func TestUploadCatbox(t *testing.T) {
	path := writeUpload(t, "demo.gif", "GIF89a-fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("reqtype"); got != "fileupload" {
			t.Errorf("reqtype = %q", got)
		}
		f, hdr, err := r.FormFile("fileToUpload")
		if err != nil {
			t.Fatalf("file field missing: %v", err)
		}
		defer f.Close()
		if hdr.Filename != "demo.gif" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "GIF89a-fake" {
			t.Errorf("file content = %q", data)
		}
		io.WriteString(w, "https://files.catbox.moe/abc123.gif")
	}))
	defer srv.Close()
	swapEndpoint(t, &catboxEndpoint, srv.URL)

	res, err := Upload(context.Background(), path, Catbox, Credentials{})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://files.catbox.moe/abc123.gif" || res.Service != Catbox {
		t.Fatalf("result = %+v", res)
	}
}

func TestUploadCatboxRejection(t *testing.T) {
	path := writeUpload(t, "demo.gif", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "File too large")
	}))
	defer srv.Close()
	swapEndpoint(t, &catboxEndpoint, srv.URL)

	_, err := Upload(context.Background(), path, Catbox, Credentials{})
	if err == nil || !strings.Contains(err.Error(), "File too large") {
		t.Fatalf("err = %v, want rejection message", err)
	}
}

func TestUploadImgurImage(t *testing.T) {
	path := writeUpload(t, "demo.png", "png-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Client-ID cid-123" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(r.FormValue("image"))
		if err != nil || string(raw) != "png-bytes" {
			t.Errorf("image field = %q (%v)", raw, err)
		}
		io.WriteString(w, `{"success":true,"data":{"link":"https://i.imgur.com/x.png","id":"x","deletehash":"del9"}}`)
	}))
	defer srv.Close()
	swapEndpoint(t, &imgurImageEndpoint, srv.URL)

	res, err := Upload(context.Background(), path, Imgur, Credentials{ImgurClientID: "cid-123"})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://i.imgur.com/x.png" || res.DeleteHash != "del9" || res.ID != "x" {
		t.Fatalf("result = %+v", res)
	}
}

func TestUploadImgurVideo(t *testing.T) {
	path := writeUpload(t, "demo.mp4", "mp4-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		f, _, err := r.FormFile("video")
		if err != nil {
			t.Fatalf("video field missing: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "mp4-bytes" {
			t.Errorf("video content = %q", data)
		}
		io.WriteString(w, `{"success":true,"data":{"link":"https://i.imgur.com/v.mp4","id":"v","deletehash":"dv"}}`)
	}))
	defer srv.Close()
	swapEndpoint(t, &imgurVideoEndpoint, srv.URL)

	res, err := Upload(context.Background(), path, Imgur, Credentials{ImgurClientID: "cid"})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://i.imgur.com/v.mp4" {
		t.Fatalf("result = %+v", res)
	}
}

func TestUploadImgurFailure(t *testing.T) {
	path := writeUpload(t, "demo.png", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"data":{"error":"Invalid client_id"}}`)
	}))
	defer srv.Close()
	swapEndpoint(t, &imgurImageEndpoint, srv.URL)

	_, err := Upload(context.Background(), path, Imgur, Credentials{ImgurClientID: "bad"})
	if err == nil || !strings.Contains(err.Error(), "Invalid client_id") {
		t.Fatalf("err = %v, want imgur error message", err)
	}
}

func TestUploadGiphy(t *testing.T) {
	path := writeUpload(t, "demo.gif", "GIF89a")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("api_key"); got != "gk-7" {
			t.Errorf("api_key = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("file field missing: %v", err)
		}
		io.WriteString(w, `{"meta":{"status":200,"msg":"OK"},"data":{"id":"funny123"}}`)
	}))
	defer srv.Close()
	swapEndpoint(t, &giphyEndpoint, srv.URL)

	res, err := Upload(context.Background(), path, Giphy, Credentials{GiphyAPIKey: "gk-7"})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if res.URL != "https://giphy.com/gifs/funny123" {
		t.Errorf("url = %q", res.URL)
	}
	if res.EmbedURL != "https://giphy.com/embed/funny123" {
		t.Errorf("embed = %q", res.EmbedURL)
	}
}

func TestUploadGiphyOnlyTakesGIF(t *testing.T) {
	path := writeUpload(t, "demo.mp4", "x")
	_, err := Upload(context.Background(), path, Giphy, Credentials{GiphyAPIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "gif") {
		t.Fatalf("err = %v, want gif-only error", err)
	}
}

func TestUploadMissingCredentials(t *testing.T) {
	path := writeUpload(t, "demo.gif", "x")

	_, err := Upload(context.Background(), path, Imgur, Credentials{})
	var ce *CredentialError
	if !errors.As(err, &ce) || ce.Key != "sharing.imgur_client_id" {
		t.Fatalf("imgur err = %v", err)
	}

	_, err = Upload(context.Background(), path, Giphy, Credentials{})
	if !errors.As(err, &ce) || ce.Key != "sharing.giphy_api_key" {
		t.Fatalf("giphy err = %v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	_, err := Upload(context.Background(), filepath.Join(t.TempDir(), "gone.gif"), Catbox, Credentials{})
	if err == nil {
		t.Fatal("missing file should fail before any request")
	}
}

func TestUploadServerError(t *testing.T) {
	path := writeUpload(t, "demo.gif", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service down", http.StatusInternalServerError)
	}))
	defer srv.Close()
	swapEndpoint(t, &catboxEndpoint, srv.URL)

	_, err := Upload(context.Background(), path, Catbox, Credentials{})
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("err = %v, want status in message", err)
	}
}
