package notifxses

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/notifx"
)

type fakeSES struct {
	in  *ses.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESProvider_BuildsInput(t *testing.T) {
	f := &fakeSES{}
	err := NewSESProvider(f).SendEmail(context.Background(), notifx.EmailMessage{
		From:     "noreply@cipherbc.com",
		FromName: "CipherBC",
		To:       []string{"a@b.com"},
		Subject:  "Your verification code is 123456",
		TextBody: "text",
		HTMLBody: "<p>html</p>",
		Tags:     map[string]string{"category": "otp"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if aws.ToString(f.in.Source) != "CipherBC <noreply@cipherbc.com>" {
		t.Errorf("Source = %q", aws.ToString(f.in.Source))
	}
	if aws.ToString(f.in.Message.Body.Html.Data) != "<p>html</p>" || aws.ToString(f.in.Message.Body.Text.Data) != "text" {
		t.Error("bodies not set")
	}
	if len(f.in.Tags) != 1 {
		t.Errorf("Tags = %v", f.in.Tags)
	}
}

func TestSESProvider_WrapsErrors(t *testing.T) {
	f := &fakeSES{err: errors.New("throttled")}
	err := NewSESProvider(f).SendEmail(context.Background(), notifx.EmailMessage{To: []string{"a@b.com"}, Subject: "s"})
	if !errx.HasCode(err, ErrSendFailed) {
		t.Fatalf("err = %v", err)
	}
}
