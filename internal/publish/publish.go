// Package publish uploads server-rendered pages to S3-compatible object
// storage.
package publish

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/streamstore/internal/config"
	"github.com/vango-dev/streamstore/internal/errors"
)

// Client is the part of the S3 API a Publisher needs. *s3.Client
// implements it.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Target is an object location.
type Target struct {
	Bucket string
	Key    string
}

// ParseTarget parses s3://bucket/key. A key ending in "/" or an empty key
// gets "index.html" appended.
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return Target{}, errors.New("E040").WithDetailf("%q is not an s3:// URL", raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" || strings.HasSuffix(key, "/") {
		key += "index.html"
	}
	return Target{Bucket: u.Host, Key: key}, nil
}

func (t Target) String() string {
	return "s3://" + t.Bucket + "/" + t.Key
}

// NewClient returns an S3 client for cfg. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewClient(cfg config.PublishConfig) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.PathStyle,
		Credentials:  aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("E041").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}

// Publisher writes rendered pages to object storage.
type Publisher struct {
	client Client
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Publisher using client. A nil logger discards logs.
func New(client Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{client: client, logger: logger, now: time.Now}
}

// Page uploads page as an HTML object at target.
func (p *Publisher) Page(ctx context.Context, target Target, page []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(target.Bucket),
		Key:           aws.String(target.Key),
		Body:          bytes.NewReader(page),
		ContentLength: aws.Int64(int64(len(page))),
		ContentType:   aws.String("text/html; charset=utf-8"),
		CacheControl:  aws.String("no-cache"),
		Metadata: map[string]string{
			"rendered-at": p.now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("E041").WithDetail("PUT " + target.String()).Wrap(err)
	}
	p.logger.Info("page published", "target", target.String(), "bytes", len(page))
	return nil
}
