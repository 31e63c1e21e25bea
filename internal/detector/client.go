package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/landmark"
)

// Client talks to a landmark detector service over HTTP. The service
// accepts a JPEG body on POST /v1/landmarks and responds with the
// detected faces as JSON.
type Client struct {
	baseURL      string
	maxImageSize int
	httpClient   *http.Client
}

// NewClient validates the configured URL and creates a detector client.
func NewClient(cfg *config.DetectorConfig) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("detector URL is required")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid detector URL %q", cfg.URL)
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		maxImageSize: cfg.MaxImageSize,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type detectedFace struct {
	Confidence float64             `json:"confidence"`
	Dense      bool                `json:"dense"`
	Points     []landmark.Landmark `json:"points"`
}

type detectResponse struct {
	Faces []detectedFace `json:"faces"`
}

// Detect downscales the image, sends it to the detector and returns
// the landmark set of the single detected face.
func (c *Client) Detect(ctx context.Context, imageData []byte) (landmark.Set, error) {
	resized, err := resizeImage(imageData, c.maxImageSize)
	if err != nil {
		return landmark.Set{}, fmt.Errorf("preparing image: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/landmarks", bytes.NewReader(resized))
	if err != nil {
		return landmark.Set{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return landmark.Set{}, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return landmark.Set{}, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return landmark.Set{}, fmt.Errorf("could not decode detector response: %w", err)
	}

	switch len(result.Faces) {
	case 0:
		return landmark.Set{}, ErrNoFace
	case 1:
	default:
		return landmark.Set{}, ErrMultipleFaces
	}

	face := result.Faces[0]
	return landmark.Set{
		Points:     face.Points,
		Confidence: face.Confidence,
		CapturedAt: time.Now().UTC(),
		Dense:      face.Dense,
	}, nil
}
