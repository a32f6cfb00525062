package otptoken

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/Abraxas-365/leadgate/pkg/otp"
)

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func challenge() otp.Challenge {
	return otp.Challenge{
		Email:     "a@b.com",
		Code:      "123456",
		ExpiresAt: time.UnixMilli(1_700_000_300_000),
	}
}

func codecs() map[string]otp.TokenCodec {
	return map[string]otp.TokenCodec{
		FormatEnvelope: NewEnvelopeCodec("test-secret"),
		FormatJWT:      NewJWTCodec("test-secret"),
	}
}

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	if !errx.HasCode(err, otp.CodeInvalidToken) {
		t.Fatalf("err = %v, want INVALID_TOKEN", err)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			tok, err := c.Issue(challenge())
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			got, err := c.Redeem(tok)
			if err != nil {
				t.Fatalf("Redeem: %v", err)
			}
			want := challenge()
			if got.Email != want.Email || got.Code != want.Code || !got.ExpiresAt.Equal(want.ExpiresAt) {
				t.Fatalf("got %+v, want %+v", got, want)
			}
		})
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			tok, _ := c.Issue(challenge())
			other, _ := New(name, "another-secret")
			_, err := other.Redeem(tok)
			assertInvalid(t, err)
		})
	}
}

func TestCodec_Garbage(t *testing.T) {
	for name, c := range codecs() {
		t.Run(name, func(t *testing.T) {
			for _, tok := range []string{"", "not-base64!!", "e30=", "a.b.c"} {
				_, err := c.Redeem(tok)
				assertInvalid(t, err)
			}
		})
	}
}

func TestEnvelope_WireFormat(t *testing.T) {
	tok, _ := NewEnvelopeCodec("test-secret").Issue(challenge())
	raw, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"data":"{\"email\":\"a@b.com\",\"otp\":\"123456\",\"expiresAt\":1700000300000}","signature":"`
	if !strings.HasPrefix(string(raw), want) {
		t.Fatalf("envelope = %s", raw)
	}
}

func TestEnvelope_AnySingleCharChangeIsRejected(t *testing.T) {
	c := NewEnvelopeCodec("test-secret")
	tok, _ := c.Issue(challenge())

	for i := range tok {
		for _, r := range []byte{'A', 'z', '0', '+'} {
			if tok[i] == r {
				continue
			}
			mutated := tok[:i] + string(r) + tok[i+1:]
			if _, err := c.Redeem(mutated); err == nil {
				t.Fatalf("mutation at %d (%q -> %q) was accepted", i, tok[i], r)
			}
		}
	}
}

func TestEnvelope_NonCanonicalRejected(t *testing.T) {
	c := NewEnvelopeCodec("test-secret")
	tok, _ := c.Issue(challenge())
	raw, _ := base64.StdEncoding.DecodeString(tok)

	cases := map[string]string{
		"whitespace":    strings.Replace(string(raw), `,"signature"`, `, "signature"`, 1),
		"extra field":   strings.TrimSuffix(string(raw), "}") + `,"x":1}`,
		"missing sig":   `{"data":"{}"}`,
		"reordered":     `{"signature":"00","data":"{}"}`,
		"trailing data": string(raw) + `{}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.Redeem(base64.StdEncoding.EncodeToString([]byte(body)))
			assertInvalid(t, err)
		})
	}
}

func TestEnvelope_UppercaseSignatureRejected(t *testing.T) {
	c := NewEnvelopeCodec("test-secret")
	tok, _ := c.Issue(challenge())
	raw, _ := base64.StdEncoding.DecodeString(tok)

	s := string(raw)
	idx := strings.Index(s, `"signature":"`) + len(`"signature":"`)
	upper := s[:idx] + strings.ToUpper(s[idx:])
	_, err := c.Redeem(base64.StdEncoding.EncodeToString([]byte(upper)))
	assertInvalid(t, err)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	c := NewJWTCodec("test-secret")
	// {"alg":"none","typ":"JWT"}.{"email":"a@b.com","otp":"123456","expiresAt":1,"iss":"leadgate"}.
	none := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"email":"a@b.com","otp":"123456","expiresAt":1,"iss":"leadgate"}`)) + "."
	_, err := c.Redeem(none)
	assertInvalid(t, err)
}

func TestJWT_ExpiredTokenStillRedeems(t *testing.T) {
	c := NewJWTCodec("test-secret")
	ch := challenge()
	ch.ExpiresAt = time.UnixMilli(1_000)

	tok, _ := c.Issue(ch)
	got, err := c.Redeem(tok)
	if err != nil {
		t.Fatalf("expiry belongs to the verifier, got %v", err)
	}
	if got.ExpiresAt.UnixMilli() != 1_000 {
		t.Fatalf("ExpiresAt = %v", got.ExpiresAt)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("paseto", "s"); err == nil {
		t.Fatal("expected error")
	}
}

func TestJWT_RejectsNonCanonicalSignatureEncoding(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	c := NewJWTCodec("test-secret")
	tok, err := c.Issue(challenge())
	if err != nil {
		t.Fatal(err)
	}

	last := strings.IndexByte(alphabet, tok[len(tok)-1])
	respelled := tok[:len(tok)-1] + string(alphabet[last^1])
	_, err = c.Redeem(respelled)
	assertInvalid(t, err)
}
