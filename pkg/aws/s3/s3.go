package s3

import (
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	EnvRegion = "AWS_REGION"

	Delimiter = "/"
)

// Ensure Client implements ClientIFace
var _ ClientIFace = (*Client)(nil)

type ClientIFace interface {
	Connect() error
	Put(file io.ReadSeeker, bucket string, key string) error
}

type Client struct {
	cfg      *aws.Config
	s3Client s3iface.S3API
	session  *session.Session
}

func New() *Client {
	cfg := aws.NewConfig()
	if region := os.Getenv(EnvRegion); region != "" {
		cfg.WithRegion(region)
	}
	return &Client{
		cfg: cfg,
	}
}

func (c *Client) Connect() error {
	// Reuse an existing session
	if c.s3Client != nil {
		return nil
	}

	awsSession, err := session.NewSession(c.cfg)
	if err != nil {
		return err
	}
	c.session = awsSession
	c.s3Client = s3.New(c.session, c.cfg)
	return nil
}

func (c *Client) Put(file io.ReadSeeker, bucket string, key string) error {
	req, _ := c.s3Client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/json"),
	})
	return req.Send()
}
