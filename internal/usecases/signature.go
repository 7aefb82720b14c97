package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/metrics"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog"
)

const signaturePrefix = "sha256="

// SignatureVerifier checks the x-hub-signature-256 header against an
// HMAC-SHA256 of the raw request body.
type SignatureVerifier struct {
	secret []byte
	logger zerolog.Logger
}

func NewSignatureVerifier(appSecret string, logger zerolog.Logger) *SignatureVerifier {
	v := &SignatureVerifier{secret: []byte(appSecret), logger: logger}
	if !v.Enabled() {
		logger.Warn().Msg("WHATSAPP_APP_SECRET is not set: webhook signatures will NOT be verified")
	}
	return v
}

// Enabled reports whether a shared secret is configured.
func (v *SignatureVerifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify must be given the body exactly as received.
// Without a secret every body is accepted and counted as unverified.
func (v *SignatureVerifier) Verify(body []byte, header string) error {
	if !v.Enabled() {
		metrics.UnverifiedWebhooks.Inc()
		v.logger.Warn().Msg("accepting webhook without signature verification")
		return nil
	}

	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, signaturePrefix) {
		return entities.ErrInvalidSignature
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return entities.ErrInvalidSignature
	}

	if !hmac.Equal(got, v.mac(body)) {
		return entities.ErrInvalidSignature
	}
	return nil
}

// Sign returns the lowercase hex digest the provider would send.
func (v *SignatureVerifier) Sign(body []byte) string {
	return hex.EncodeToString(v.mac(body))
}

func (v *SignatureVerifier) mac(body []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return mac.Sum(nil)
}
