// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package s3store keeps the document as an object in an S3-compatible
// bucket. The object ETag is the revision and writes use conditional
// PutObject, so the bucket enforces the revision check.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"inksplash/internal/blob"
)

// API is the subset of the S3 client the store uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ blob.Store = &Store{}

// Store is a blob.Store over a single S3 object.
type Store struct {
	api     API
	bucket  string
	key     string
	timeout time.Duration
}

// Options configure a store built by New.
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Key       string
	Timeout   time.Duration
}

// New builds an S3 client with static credentials and path-style
// addressing, which CEPH and MinIO style endpoints require.
func New(opts Options) (*Store, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("s3store: %w", blob.ErrCredentialMissing)
	}
	if opts.Bucket == "" || opts.Key == "" {
		return nil, fmt.Errorf("s3store: bucket and key are required")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	s3opts := s3.Options{
		Region:       opts.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	}
	if opts.Endpoint != "" {
		s3opts.BaseEndpoint = aws.String(strings.TrimRight(opts.Endpoint, "/"))
	}

	return NewWithAPI(s3.New(s3opts), opts.Bucket, opts.Key, opts.Timeout), nil
}

// NewWithAPI wraps an existing client.
func NewWithAPI(api API, bucket, key string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Store{api: api, bucket: bucket, key: key, timeout: timeout}
}

func (s *Store) Fetch(ctx context.Context) (blob.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return blob.Snapshot{}, fmt.Errorf("s3 fetch %s/%s: %w", s.bucket, s.key, classify(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return blob.Snapshot{}, fmt.Errorf("s3 read body %s/%s: %w", s.bucket, s.key, classify(err))
	}
	if !json.Valid(data) {
		return blob.Snapshot{}, fmt.Errorf("s3 fetch %s/%s: %w", s.bucket, s.key, blob.ErrMalformed)
	}
	return blob.Snapshot{Content: data, Revision: aws.ToString(out.ETag)}, nil
}

func (s *Store) Write(ctx context.Context, content []byte, revision, message string) (blob.WriteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String("application/json"),
		Metadata:      map[string]string{"commit-message": metadataSafe(message)},
	}
	if revision == "" {
		input.IfNoneMatch = aws.String("*")
	} else {
		input.IfMatch = aws.String(revision)
	}

	out, err := s.api.PutObject(ctx, input)
	if err != nil {
		return blob.WriteResult{}, fmt.Errorf("s3 write %s/%s: %w", s.bucket, s.key, classify(err))
	}

	rev := aws.ToString(out.ETag)
	slog.Info("s3 object written", "bucket", s.bucket, "key", s.key, "etag", rev)
	return blob.WriteResult{Revision: rev, Commit: aws.ToString(out.VersionId)}, nil
}

// classify maps S3 error codes onto the blob taxonomy.
func classify(err error) error {
	if blob.IsTimeout(err) {
		return fmt.Errorf("%w: %v", blob.ErrTransient, err)
	}

	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %v", blob.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return fmt.Errorf("%w: %v", blob.ErrNotFound, err)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return fmt.Errorf("%w: %v", blob.ErrRevisionMismatch, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "Forbidden":
			return fmt.Errorf("%w: %v", blob.ErrUnauthorized, err)
		}
	}
	return fmt.Errorf("%w: %v", blob.ErrTransient, err)
}

// metadataSafe keeps the audit message within what S3 user metadata
// accepts: printable ASCII, bounded length.
func metadataSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
		if b.Len() >= 1024 {
			break
		}
	}
	return b.String()
}
