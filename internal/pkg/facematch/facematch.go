package facematch

import "context"

// Verifier compares a submitted selfie against a worker's reference photo.
type Verifier interface {
	// Compare returns nil when the two images show the same person. A
	// mismatch or an unusable image is reported through the attendance
	// domain's evidence errors.
	Compare(ctx context.Context, reference, candidate []byte) error
}

// NoopVerifier accepts every photo. Used when face verification is disabled
// in configuration, typically local development.
type NoopVerifier struct{}

func NewNoopVerifier() *NoopVerifier {
	return &NoopVerifier{}
}

func (v *NoopVerifier) Compare(ctx context.Context, reference, candidate []byte) error {
	return nil
}
