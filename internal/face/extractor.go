package face

import (
	"bytes"         // Request body buffer
	"context"       // Cancellable extraction calls
	"encoding/json" // Face service response decoding
	"fmt"           // Error wrapping
	"net/http"      // HTTP client to the face service
	"time"          // Client timeout
)

// Extractor converts a raw image into a face embedding. Implementations must
// return ErrNoFaceDetected when the image contains no usable face, and when
// multiple faces are present the first detected face wins.
type Extractor interface {
	Extract(ctx context.Context, image []byte) (Embedding, error)
}

// HTTPExtractor calls an external face embedding service over HTTP
type HTTPExtractor struct {
	BaseURL string       // Base URL of the face service
	Client  *http.Client // HTTP client, defaulted by NewHTTPExtractor
}

// NewHTTPExtractor builds an extractor for the face service at baseURL
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		BaseURL: baseURL,                                 // Service base URL
		Client:  &http.Client{Timeout: 15 * time.Second}, // Extraction can be slow; bound it
	}
}

// encodeResponse is the face service's reply: one embedding per detected face
type encodeResponse struct {
	Embeddings [][]float64 `json:"embeddings"` // Detected faces in detection order
}

// Extract posts the image to the face service and returns the first detected
// face's embedding
func (x *HTTPExtractor) Extract(ctx context.Context, image []byte) (Embedding, error) {
	// Build the request against the service's encode endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.BaseURL+"/encode", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("face service request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream") // Raw image bytes
	resp, err := x.Client.Do(req)                              // Call the service
	if err != nil {
		return nil, fmt.Errorf("face service call: %w", err)
	}
	defer resp.Body.Close()
	// Any non-200 reply is a pipeline failure
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face service returned status %d", resp.StatusCode)
	}
	var body encodeResponse // Decode the embeddings list
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("face service response: %w", err)
	}
	// Zero detected faces is a typed failure the caller can surface
	if len(body.Embeddings) == 0 {
		return nil, ErrNoFaceDetected
	}
	// First detected face wins when multiple faces are present
	return Embedding(body.Embeddings[0]), nil
}
