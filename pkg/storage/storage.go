package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrymomot/runway/pkg/id"
)

// Disk stores and serves files.
type Disk interface {
	Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*FileInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// FileInfo describes a stored file.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

type putOptions struct {
	key         string
	prefix      string
	contentType string
	public      bool
}

// PutOption configures Put.
type PutOption func(*putOptions)

// WithKey stores the file under key instead of a generated one.
func WithKey(key string) PutOption {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix puts the generated key under prefix.
func WithPrefix(prefix string) PutOption {
	return func(o *putOptions) { o.prefix = strings.Trim(prefix, "/") }
}

// WithContentType skips content sniffing.
func WithContentType(ct string) PutOption {
	return func(o *putOptions) { o.contentType = ct }
}

// WithPublicRead uploads the file with a public-read ACL.
func WithPublicRead() PutOption {
	return func(o *putOptions) { o.public = true }
}

// S3 is a Disk backed by S3-compatible object storage.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

var _ Disk = (*S3)(nil)

// New creates an S3 disk. No request is made until the first operation.
func New(cfg Config) (*S3, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Put uploads r. Readers that cannot seek are buffered, at most size bytes.
// Without WithContentType the type is sniffed from the first 512 bytes.
// Generated keys are "{prefix}/{ulid}{ext}".
func (s *S3) Put(ctx context.Context, r io.Reader, size int64, opts ...PutOption) (*FileInfo, error) {
	if size == 0 {
		return nil, &Error{Kind: ErrEmptyFile, Op: "put"}
	}

	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}

	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(io.LimitReader(r, size))
		if err != nil {
			return nil, &Error{Kind: ErrOperationFailed, Op: "put", Err: err}
		}
		body = bytes.NewReader(data)
	}
	if o.contentType == "" {
		ct, err := sniff(body)
		if err != nil {
			return nil, &Error{Kind: ErrOperationFailed, Op: "put", Err: err}
		}
		o.contentType = ct
	}

	key := o.key
	if key == "" {
		key = path.Join(o.prefix, id.NewULID()+extension(o.contentType))
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(o.contentType),
	}
	if o.public {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, classify("put", key, err)
	}
	return &FileInfo{Key: key, ContentType: o.contentType, Size: size}, nil
}

// Get opens a stored file. The caller closes the reader.
func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify("get", key, err)
	}
	return out.Body, nil
}

// Delete removes a stored file.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return classify("delete", key, err)
	}
	return nil
}

// URL returns the public URL of key when a public prefix is configured,
// otherwise a signed URL valid for the configured expiry.
func (s *S3) URL(ctx context.Context, key string) (string, error) {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key, nil
	}
	return s.SignedURL(ctx, key, s.cfg.SignedURLExpiry)
}

// SignedURL presigns a GET of key. No request is made.
func (s *S3) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", classify("presign", key, err)
	}
	return req.URL, nil
}

// Healthcheck returns a readiness check that verifies the bucket is reachable.
func Healthcheck(s *S3) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func sniff(rs io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(rs, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

func extension(contentType string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "image/jpeg":
		return ".jpg"
	case "text/plain":
		return ".txt"
	case "application/octet-stream", "":
		return ".bin"
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
