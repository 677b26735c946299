package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"custody-go/internal/custody"
)

// S3Archive stores copies as objects in an S3 bucket under an optional key
// prefix. Credentials come from the default AWS credential chain.
type S3Archive struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Archive creates an S3 archive for the given bucket, prefix, and
// region. When accessKey is non-empty a static credential pair is used;
// otherwise the default AWS credential chain applies.
func NewS3Archive(name, bucket, prefix, region, accessKey, secretKey string) (*S3Archive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 archive requires a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Archive{
		name:     name,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// key builds the object key for a copy name.
func (a *S3Archive) key(name string) string {
	if a.prefix == "" {
		return name
	}
	return a.prefix + "/" + name
}

// Put uploads a copy to the bucket. The uploader handles multipart uploads
// for large transcripts.
func (a *S3Archive) Put(name string, r io.Reader, size int64) error {
	_, err := a.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading to s3://%s/%s: %w", a.bucket, a.key(name), err)
	}
	return nil
}

// Get downloads a copy from the bucket and writes it to w.
func (a *S3Archive) Get(name string, w io.Writer) error {
	out, err := a.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(name)),
	})
	if err != nil {
		return fmt.Errorf("downloading s3://%s/%s: %w", a.bucket, a.key(name), err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading s3 object body: %w", err)
	}
	return nil
}

// ValidateSetup verifies the bucket is reachable with the configured
// credentials.
func (a *S3Archive) ValidateSetup() error {
	_, err := a.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", a.bucket, err)
	}
	return nil
}

// Compile-time check that S3Archive implements custody.Archive
var _ custody.Archive = (*S3Archive)(nil)
