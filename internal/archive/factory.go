package archive

import (
	"fmt"
	"strings"

	"custody-go/internal/config"
	"custody-go/internal/custody"
	"custody-go/internal/model"
)

// Provider resolves storage locations to Archive backends.
// Directory-backed location types share the filesystem archive; the s3
// type gets its own client built from the configured credentials.
type Provider struct {
	s3 config.S3Config
}

// NewProvider creates a Provider with the given S3 settings.
func NewProvider(s3cfg config.S3Config) *Provider {
	return &Provider{s3: s3cfg}
}

// For returns the Archive backend for a storage location.
func (p *Provider) For(loc *model.StorageLocation) (custody.Archive, error) {
	switch loc.Type {
	case model.LocationLocal, model.LocationICloud, model.LocationDropbox,
		model.LocationGoogleDrive, model.LocationExternal, model.LocationOptical:
		if loc.Path == "" {
			return nil, fmt.Errorf("location %q has no path", loc.Name)
		}
		return NewFileSystemArchive(loc.Name, loc.Path)
	case model.LocationS3:
		bucket, prefix := splitBucketPath(loc.Path)
		return NewS3Archive(loc.Name, bucket, prefix, p.s3.Region, p.s3.AccessKey, p.s3.SecretKey)
	default:
		return nil, fmt.Errorf("unknown location type: %s", loc.Type)
	}
}

// splitBucketPath splits "bucket/key/prefix" into bucket and prefix.
func splitBucketPath(path string) (string, string) {
	path = strings.Trim(path, "/")
	bucket, prefix, _ := strings.Cut(path, "/")
	return bucket, prefix
}

// Compile-time check that Provider implements custody.ArchiveProvider
var _ custody.ArchiveProvider = (*Provider)(nil)
