package facematch

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/re-attendance/attendance-backend-go/internal/domain/attendance"
)

// compareFacesAPI is the slice of the Rekognition client we use.
type compareFacesAPI interface {
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
}

// RekognitionVerifier compares faces with AWS Rekognition. A match requires
// at least the configured similarity score on the best face pair.
type RekognitionVerifier struct {
	client              compareFacesAPI
	similarityThreshold float32
	timeout             time.Duration
}

func NewRekognitionVerifier(ctx context.Context, region string, similarityThreshold float32, timeout time.Duration) (*RekognitionVerifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}

	return &RekognitionVerifier{
		client:              rekognition.NewFromConfig(cfg),
		similarityThreshold: similarityThreshold,
		timeout:             timeout,
	}, nil
}

func (v *RekognitionVerifier) Compare(ctx context.Context, reference, candidate []byte) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	out, err := v.client.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage:         &types.Image{Bytes: reference},
		TargetImage:         &types.Image{Bytes: candidate},
		SimilarityThreshold: aws.Float32(v.similarityThreshold),
	})
	if err != nil {
		// Rekognition reports an image without a detectable face as an
		// invalid parameter.
		var invalidParam *types.InvalidParameterException
		if errors.As(err, &invalidParam) {
			return attendance.ErrNoFaceDetected
		}
		return err
	}

	if len(out.FaceMatches) == 0 {
		return attendance.ErrFaceMismatch
	}

	for _, match := range out.FaceMatches {
		if match.Similarity != nil && *match.Similarity >= v.similarityThreshold {
			return nil
		}
	}

	return attendance.ErrFaceMismatch
}
