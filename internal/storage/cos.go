package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	cos "github.com/tencentyun/cos-go-sdk-v5"

	"github.com/aaronmcdaid/cpm/pkg/cpmerrors"
)

// COSConfig holds Tencent COS connection details. cmd/cpm fills the
// credentials from the loaded configuration; there are no CLI flags for them.
type COSConfig struct {
	Bucket    string
	Region    string
	SecretID  string
	SecretKey string
	Domain    string
	Scheme    string
}

// COSStorage writes community output files to a Tencent Cloud COS bucket.
type COSStorage struct {
	client *cos.Client
	bucket string
	region string
	domain string
	scheme string
}

// NewCOSStorage builds a COSStorage from cfg.
func NewCOSStorage(cfg COSConfig) (*COSStorage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, cpmerrors.New(cpmerrors.CodeStorageError, "COS bucket and region are required")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, cpmerrors.New(cpmerrors.CodeStorageError, "COS credentials are required")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "myqcloud.com"
	}
	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "https"
	}

	bucketURL, err := url.Parse(fmt.Sprintf("%s://%s.cos.%s.%s", scheme, cfg.Bucket, cfg.Region, domain))
	if err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "parsing COS bucket URL", err)
	}
	serviceURL, err := url.Parse(fmt.Sprintf("%s://cos.%s.%s", scheme, cfg.Region, domain))
	if err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "parsing COS service URL", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL, ServiceURL: serviceURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{SecretID: cfg.SecretID, SecretKey: cfg.SecretKey},
	})

	return &COSStorage{client: client, bucket: cfg.Bucket, region: cfg.Region, domain: domain, scheme: scheme}, nil
}

// Upload puts reader's contents at key, overwriting any existing object.
func (s *COSStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	if _, err := s.client.Object.Put(ctx, key, reader, nil); err != nil {
		return cpmerrors.Wrap(cpmerrors.CodeStorageError, "uploading "+key+" to COS", err)
	}
	return nil
}

// Download fetches key's object body.
func (s *COSStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, cpmerrors.Wrap(cpmerrors.CodeStorageError, "downloading "+key+" from COS", err)
	}
	return resp.Body, nil
}

// Exists reports whether key is present in the bucket.
func (s *COSStorage) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.Object.IsExist(ctx, key)
	if err != nil {
		return false, cpmerrors.Wrap(cpmerrors.CodeStorageError, "checking existence of "+key+" in COS", err)
	}
	return ok, nil
}

// GetURL returns the object's public URL.
func (s *COSStorage) GetURL(key string) string {
	return fmt.Sprintf("%s://%s.cos.%s.%s/%s", s.scheme, s.bucket, s.region, s.domain, key)
}
