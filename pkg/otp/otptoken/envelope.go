package otptoken

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/kernel"
	"github.com/Abraxas-365/leadgate/pkg/otp"
)

var b64 = base64.StdEncoding.Strict()

// challengeData is the signed payload. Field order is the wire order.
type challengeData struct {
	Email     *string `json:"email"`
	OTP       *string `json:"otp"`
	ExpiresAt *int64  `json:"expiresAt"`
}

type envelope struct {
	Data      *string `json:"data"`
	Signature *string `json:"signature"`
}

// EnvelopeCodec produces base64({"data": ..., "signature": hex(HMAC-SHA256)}).
type EnvelopeCodec struct {
	secret []byte
}

func NewEnvelopeCodec(secret string) *EnvelopeCodec {
	return &EnvelopeCodec{secret: []byte(secret)}
}

func (c *EnvelopeCodec) sign(data string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *EnvelopeCodec) Issue(ch otp.Challenge) (string, error) {
	email := ch.Email.String()
	ms := ch.ExpiresAt.UnixMilli()
	data, err := json.Marshal(challengeData{Email: &email, OTP: &ch.Code, ExpiresAt: &ms})
	if err != nil {
		return "", errx.Wrap(err, "failed to encode challenge", errx.TypeInternal)
	}

	d := string(data)
	sig := c.sign(d)
	raw, err := json.Marshal(envelope{Data: &d, Signature: &sig})
	if err != nil {
		return "", errx.Wrap(err, "failed to encode token", errx.TypeInternal)
	}
	return b64.EncodeToString(raw), nil
}

// Redeem accepts only byte-exact tokens produced by Issue with the same
// secret.
func (c *EnvelopeCodec) Redeem(token string) (otp.Challenge, error) {
	raw, err := b64.DecodeString(token)
	if err != nil {
		return otp.Challenge{}, otp.ErrInvalidToken().WithCause(err)
	}

	var env envelope
	if err := decodeStrict(raw, &env); err != nil || env.Data == nil || env.Signature == nil {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}

	canonical, err := json.Marshal(env)
	if err != nil || !bytes.Equal(canonical, raw) {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}

	if !hmac.Equal([]byte(*env.Signature), []byte(c.sign(*env.Data))) {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}

	var data challengeData
	if err := decodeStrict([]byte(*env.Data), &data); err != nil {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}
	if data.Email == nil || data.OTP == nil || data.ExpiresAt == nil {
		return otp.Challenge{}, otp.ErrInvalidToken()
	}

	return otp.Challenge{
		Email:     kernel.Email(*data.Email),
		Code:      *data.OTP,
		ExpiresAt: time.UnixMilli(*data.ExpiresAt),
	}, nil
}

func decodeStrict(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errx.Validation("trailing data")
	}
	return nil
}
