package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Signature"

type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

// Enabled reports whether a secret is configured. Without one, webhook
// bodies are accepted unsigned.
func (s *Signer) Enabled() bool {
	return len(s.secretKey) > 0
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	signature := mac.Sum(nil)
	return hex.EncodeToString(signature)
}

func (s *Signer) Verify(data []byte, signature string) (bool, error) {
	expectedSignature := s.Sign(data)
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")

	if !hmac.Equal([]byte(expectedSignature), []byte(strings.ToLower(signature))) {
		s.logger.Warn("Webhook signature verification failed",
			slog.Int("body_bytes", len(data)))
		return false, fmt.Errorf("invalid signature")
	}

	return true, nil
}
