// Package share uploads finished recordings to public hosting
// services and hands back the link. Catbox takes anonymous uploads;
// Imgur and Giphy need API credentials from the config file.
package share

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service names an upload target.
type Service string

const (
	Catbox Service = "catbox"
	Imgur  Service = "imgur"
	Giphy  Service = "giphy"
)

// Services lists the supported upload targets.
func Services() []Service {
	return []Service{Catbox, Imgur, Giphy}
}

// ParseService normalizes a service name from a flag or config value.
func ParseService(s string) (Service, error) {
	switch Service(strings.ToLower(strings.TrimSpace(s))) {
	case Catbox:
		return Catbox, nil
	case Imgur:
		return Imgur, nil
	case Giphy:
		return Giphy, nil
	default:
		return "", fmt.Errorf("unknown sharing service %q (try catbox, imgur or giphy)", s)
	}
}

// Credentials carries the API secrets the keyed services need.
type Credentials struct {
	ImgurClientID string
	GiphyAPIKey   string
}

// Result is what a finished upload reports. DeleteHash is Imgur only
// and EmbedURL is Giphy only.
type Result struct {
	Service    Service
	URL        string
	ID         string
	DeleteHash string
	EmbedURL   string
}

// CredentialError means the chosen service needs a key the config
// does not carry.
type CredentialError struct {
	Service Service
	Key     string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("%s uploads need %s set in the config file", e.Service, e.Key)
}

// Endpoints are variables so tests can stand in a local server.
var (
	catboxEndpoint     = "https://catbox.moe/user/api.php"
	imgurImageEndpoint = "https://api.imgur.com/3/image"
	imgurVideoEndpoint = "https://api.imgur.com/3/upload"
	giphyEndpoint      = "https://upload.giphy.com/v1/gifs"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// Upload sends the file to the chosen service and returns the link.
func Upload(ctx context.Context, path string, svc Service, creds Credentials) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	switch svc {
	case Catbox:
		return uploadCatbox(ctx, path)
	case Imgur:
		if creds.ImgurClientID == "" {
			return nil, &CredentialError{Service: Imgur, Key: "sharing.imgur_client_id"}
		}
		return uploadImgur(ctx, path, creds.ImgurClientID)
	case Giphy:
		if creds.GiphyAPIKey == "" {
			return nil, &CredentialError{Service: Giphy, Key: "sharing.giphy_api_key"}
		}
		return uploadGiphy(ctx, path, creds.GiphyAPIKey)
	default:
		return nil, fmt.Errorf("unknown sharing service %q", svc)
	}
}

// uploadCatbox posts the file anonymously. The response body is the
// hosted URL, bare.
func uploadCatbox(ctx context.Context, path string) (*Result, error) {
	body, contentType, err := multipartFile(path, "fileToUpload", map[string]string{
		"reqtype": "fileupload",
	})
	if err != nil {
		return nil, err
	}
	text, err := post(ctx, catboxEndpoint, contentType, body, nil)
	if err != nil {
		return nil, fmt.Errorf("catbox: %w", err)
	}
	link := strings.TrimSpace(text)
	if !strings.HasPrefix(link, "https://") {
		return nil, fmt.Errorf("catbox rejected the upload: %s", snippet(link))
	}
	return &Result{Service: Catbox, URL: link}, nil
}

// uploadImgur posts images base64-encoded to the image endpoint and
// video as a multipart file to the upload endpoint.
func uploadImgur(ctx context.Context, path, clientID string) (*Result, error) {
	headers := map[string]string{"Authorization": "Client-ID " + clientID}

	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		body, contentType, merr := multipartFile(path, "video", nil)
		if merr != nil {
			return nil, merr
		}
		text, err = post(ctx, imgurVideoEndpoint, contentType, body, headers)
	} else {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), rerr)
		}
		form := url.Values{
			"image": {base64.StdEncoding.EncodeToString(data)},
			"type":  {"base64"},
		}
		text, err = post(ctx, imgurImageEndpoint,
			"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), headers)
	}
	if err != nil {
		return nil, fmt.Errorf("imgur: %w", err)
	}

	var reply struct {
		Success bool `json:"success"`
		Data    struct {
			Link       string `json:"link"`
			ID         string `json:"id"`
			DeleteHash string `json:"deletehash"`
			Error      any    `json:"error"`
		} `json:"data"`
	}
	if err := unmarshalJSON(text, &reply); err != nil {
		return nil, fmt.Errorf("imgur: %w", err)
	}
	if !reply.Success {
		return nil, fmt.Errorf("imgur upload failed: %v", reply.Data.Error)
	}
	return &Result{
		Service:    Imgur,
		URL:        reply.Data.Link,
		ID:         reply.Data.ID,
		DeleteHash: reply.Data.DeleteHash,
	}, nil
}

// uploadGiphy posts the GIF with the API key as a form field.
func uploadGiphy(ctx context.Context, path, apiKey string) (*Result, error) {
	if !strings.EqualFold(filepath.Ext(path), ".gif") {
		return nil, errors.New("giphy only accepts gif files")
	}
	body, contentType, err := multipartFile(path, "file", map[string]string{
		"api_key": apiKey,
	})
	if err != nil {
		return nil, err
	}
	text, err := post(ctx, giphyEndpoint, contentType, body, nil)
	if err != nil {
		return nil, fmt.Errorf("giphy: %w", err)
	}

	var reply struct {
		Meta struct {
			Status int    `json:"status"`
			Msg    string `json:"msg"`
		} `json:"meta"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := unmarshalJSON(text, &reply); err != nil {
		return nil, fmt.Errorf("giphy: %w", err)
	}
	if reply.Meta.Status != http.StatusOK || reply.Data.ID == "" {
		return nil, fmt.Errorf("giphy upload failed: %s", snippet(reply.Meta.Msg))
	}
	return &Result{
		Service:  Giphy,
		URL:      "https://giphy.com/gifs/" + reply.Data.ID,
		ID:       reply.Data.ID,
		EmbedURL: "https://giphy.com/embed/" + reply.Data.ID,
	}, nil
}

// multipartFile buffers a multipart body with the file under the given
// field name plus any extra fields.
func multipartFile(path, field string, extra map[string]string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("multipart field %s: %w", k, err)
		}
	}
	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("multipart file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("multipart close: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// post sends the request and returns the body text, folding non-2xx
// statuses into the error.
func post(ctx context.Context, endpoint, contentType string, body io.Reader, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: %s", resp.Status, snippet(string(data)))
	}
	return string(data), nil
}

func unmarshalJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("unexpected response: %s", snippet(text))
	}
	return nil
}

// snippet keeps error payloads readable.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	if s == "" {
		return "(empty response)"
	}
	return s
}
