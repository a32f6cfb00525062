package leadinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"path"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/lead"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of *s3.Client used by S3AuditSink.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AuditSink archives one JSON object per submission under
// prefix/YYYY/MM/DD/<submission id>.json.
type S3AuditSink struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3AuditSink(client S3API, bucket, prefix string) *S3AuditSink {
	return &S3AuditSink{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (a *S3AuditSink) key(s *lead.Submission) string {
	return path.Join(a.prefix, s.SubmittedAt.UTC().Format("2006/01/02"), s.ID+".json")
}

func (a *S3AuditSink) Record(ctx context.Context, s *lead.Submission, crm lead.CRMResult) error {
	body, err := json.Marshal(newAuditRecord(s, crm, a.now()))
	if err != nil {
		return errx.Wrap(err, "failed to encode audit record", errx.TypeInternal)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(s)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errx.Wrap(err, "failed to archive submission", errx.TypeExternal).
			WithDetail("bucket", a.bucket).
			WithDetail("submission_id", s.ID)
	}
	return nil
}
