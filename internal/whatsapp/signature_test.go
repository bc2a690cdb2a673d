package whatsapp

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestVerify_ValidSignature(t *testing.T) {
	tests := []struct {
		name   string
		body   []byte
		secret string
	}{
		{
			name:   "basic payload",
			body:   []byte(`{"object":"whatsapp_business_account","entry":[]}`),
			secret: "my-app-secret",
		},
		{
			name:   "empty body",
			body:   []byte{},
			secret: "secret",
		},
		{
			name:   "unicode payload",
			body:   []byte(`{"text":{"body":"café ₹150"}}`),
			secret: "unicode-key-日本語",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.secret, false, testLogger())
			header := Sign(tt.body, tt.secret)

			if !v.Verify(tt.body, header) {
				t.Error("valid signature should verify")
			}
		})
	}
}

func TestVerify_TamperedBody(t *testing.T) {
	secret := "my-app-secret"
	body := []byte(`{"object":"whatsapp_business_account"}`)
	header := Sign(body, secret)
	v := NewVerifier(secret, false, testLogger())

	// Flip one bit in every byte position — all must fail
	for i := range body {
		tampered := make([]byte, len(body))
		copy(tampered, body)
		tampered[i] ^= 0x01

		if v.Verify(tampered, header) {
			t.Fatalf("tampered body (byte %d) should not verify", i)
		}
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	secret := "my-app-secret"
	body := []byte(`{"object":"whatsapp_business_account"}`)
	header := Sign(body, secret)
	v := NewVerifier(secret, false, testLogger())

	// Change one hex digit of the digest
	digest := strings.TrimPrefix(header, "sha256=")
	altered := "0"
	if digest[0] == '0' {
		altered = "1"
	}
	tampered := "sha256=" + altered + digest[1:]

	if v.Verify(body, tampered) {
		t.Error("tampered signature should not verify")
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	v := NewVerifier("secret", false, testLogger())

	if v.Verify([]byte(`{}`), "") {
		t.Error("missing header must always fail verification")
	}
}

func TestVerify_WrongPrefix(t *testing.T) {
	secret := "secret"
	body := []byte(`{}`)
	header := Sign(body, secret)
	v := NewVerifier(secret, false, testLogger())

	noPrefix := strings.TrimPrefix(header, "sha256=")
	if v.Verify(body, noPrefix) {
		t.Error("signature without sha256= prefix should not verify")
	}

	if v.Verify(body, "sha1="+noPrefix) {
		t.Error("signature with wrong algorithm prefix should not verify")
	}
}

func TestVerify_NonHexDigest(t *testing.T) {
	v := NewVerifier("secret", false, testLogger())

	if v.Verify([]byte(`{}`), "sha256=not-hex-at-all") {
		t.Error("non-hex digest should not verify")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"entry":[]}`)
	header := Sign(body, "secret-a")
	v := NewVerifier("secret-b", false, testLogger())

	if v.Verify(body, header) {
		t.Error("signature computed with a different secret should not verify")
	}
}

func TestVerify_NoSecretFailsClosed(t *testing.T) {
	v := NewVerifier("", false, testLogger())
	body := []byte(`{}`)

	if v.Verify(body, Sign(body, "")) {
		t.Error("verifier without a secret must reject, not fail open")
	}
}

func TestVerify_InsecureSkipAllowsEverything(t *testing.T) {
	v := NewVerifier("", true, testLogger())

	if !v.Verify([]byte(`{}`), "") {
		t.Error("insecure mode should allow requests without a signature")
	}
	if !v.Verify([]byte(`{}`), "garbage") {
		t.Error("insecure mode should allow requests with a bogus signature")
	}
}

func TestSign_Format(t *testing.T) {
	sig := Sign([]byte(`{}`), "secret")

	if !strings.HasPrefix(sig, "sha256=") {
		t.Fatalf("expected sha256= prefix, got %q", sig)
	}
	// 32-byte digest → 64 hex chars
	if len(sig) != len("sha256=")+64 {
		t.Errorf("unexpected signature length %d", len(sig))
	}
}
