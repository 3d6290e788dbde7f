// Package face implements the biometric matching core: a fixed-width binary
// codec for face embeddings, the distance metric used to compare them, and an
// Extractor that turns an image into an embedding.
package face

import (
	"encoding/binary" // Fixed-endianness embedding codec
	"errors"          // Sentinel errors
	"math"            // Euclidean distance
)

// DefaultTolerance is the production default maximum distance for two
// embeddings to count as the same person. Lower is stricter.
const DefaultTolerance = 0.6

// ErrNoFaceDetected is returned when an image contains no usable face
var ErrNoFaceDetected = errors.New("no face detected in image")

// ErrInvalidEncoding is returned when stored embedding bytes cannot be decoded
var ErrInvalidEncoding = errors.New("invalid face encoding")

// Embedding is a fixed-length numeric descriptor of a face (128 or 512
// dimensions depending on the extractor)
type Embedding []float64

// Encode serializes the embedding as a little-endian uint32 length prefix
// followed by little-endian float64 values, so the stored bytes round-trip
// independently of any numeric library's memory layout
func (e Embedding) Encode() []byte {
	buf := make([]byte, 4+8*len(e))                         // Length prefix plus one float64 per dimension
	binary.LittleEndian.PutUint32(buf, uint32(len(e)))      // Dimension count first
	for i, v := range e {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(v)) // Each value little-endian
	}
	return buf
}

// Decode reconstructs an embedding from its encoded bytes
func Decode(b []byte) (Embedding, error) {
	if len(b) < 4 {
		return nil, ErrInvalidEncoding // Too short to hold the length prefix
	}
	n := int(binary.LittleEndian.Uint32(b)) // Read the dimension count
	if len(b) != 4+8*n {
		return nil, ErrInvalidEncoding // Byte length must match the declared dimension
	}
	e := make(Embedding, n)
	for i := range e {
		e[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[4+8*i:])) // Decode each value
	}
	return e, nil
}

// Distance returns the Euclidean distance between two embeddings. Embeddings
// of different dimensions are maximally distant.
func Distance(a, b Embedding) float64 {
	if len(a) != len(b) {
		return math.Inf(1) // Incomparable embeddings never match
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i] // Per-dimension difference
		sum += d * d
	}
	return math.Sqrt(sum) // Euclidean norm of the difference
}

// Matches reports whether the probe embedding is within tolerance of the
// stored embedding. Pure function; an embedding always matches itself for any
// tolerance >= 0.
func Matches(stored, probe Embedding, tolerance float64) bool {
	return Distance(stored, probe) <= tolerance // Within tolerance means same person
}
