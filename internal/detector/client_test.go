package detector

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/landmark"
)

// testJPEG encodes a solid image of the given size.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.DetectorConfig{URL: srv.URL, MaxImageSize: 640})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestDetectSingleFace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/landmarks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("unexpected content type %s", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"faces": [{
			"confidence": 0.97,
			"dense": false,
			"points": [
				{"label": "nose_tip", "x": 1.5, "y": 2.5, "z": -0.5},
				{"label": "chin", "x": 1.5, "y": 40, "z": -2}
			]
		}]}`))
	})

	set, err := client.Detect(context.Background(), testJPEG(t, 100, 80))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if set.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", set.Len())
	}
	if set.Confidence != 0.97 {
		t.Errorf("expected confidence 0.97, got %f", set.Confidence)
	}
	if set.Dense {
		t.Error("expected compact set")
	}
	if set.CapturedAt.IsZero() {
		t.Error("expected capture time to be set")
	}
	nose, ok := set.Lookup(landmark.NoseTip)
	if !ok {
		t.Fatal("expected nose_tip point")
	}
	if nose.X != 1.5 || nose.Y != 2.5 || nose.Z != -0.5 {
		t.Errorf("unexpected nose coordinates %+v", nose)
	}
}

func TestDetectNoFace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"faces": []}`))
	})

	_, err := client.Detect(context.Background(), testJPEG(t, 100, 80))
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("expected ErrNoFace, got %v", err)
	}
}

func TestDetectMultipleFaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"faces": [{"points": []}, {"points": []}]}`))
	})

	_, err := client.Detect(context.Background(), testJPEG(t, 100, 80))
	if !errors.Is(err, ErrMultipleFaces) {
		t.Errorf("expected ErrMultipleFaces, got %v", err)
	}
}

func TestDetectServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Detect(context.Background(), testJPEG(t, 100, 80))
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestDetectRejectsInvalidImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("detector must not be called for undecodable images")
	})

	if _, err := client.Detect(context.Background(), []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDetectDownscalesLargeImages(t *testing.T) {
	var uploaded []byte
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read upload: %v", err)
		}
		uploaded = body
		w.Write([]byte(`{"faces": [{"points": [{"label": "nose_tip", "x": 0, "y": 0, "z": 0}]}]}`))
	})

	if _, err := client.Detect(context.Background(), testJPEG(t, 2000, 1500)); err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(uploaded))
	if err != nil {
		t.Fatalf("decode uploaded image: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 640 || b.Dy() > 640 {
		t.Errorf("expected image within 640px, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(&config.DetectorConfig{URL: ""}); err == nil {
		t.Error("expected error for empty URL")
	}
	if _, err := NewClient(&config.DetectorConfig{URL: "://bad"}); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := NewClient(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestResizeImageKeepsAspectRatio(t *testing.T) {
	resized, err := resizeImage(testJPEG(t, 2000, 1000), 640)
	if err != nil {
		t.Fatalf("resizeImage failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 640 {
		t.Errorf("expected width 640, got %d", b.Dx())
	}
	if b.Dy() != 320 {
		t.Errorf("expected height 320, got %d", b.Dy())
	}
}

func TestResizeImageSmallImagePassesThrough(t *testing.T) {
	resized, err := resizeImage(testJPEG(t, 300, 200), 640)
	if err != nil {
		t.Fatalf("resizeImage failed: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resized))
	if err != nil {
		t.Fatalf("decode resized: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 200 {
		t.Errorf("expected 300x200, got %dx%d", b.Dx(), b.Dy())
	}
}
