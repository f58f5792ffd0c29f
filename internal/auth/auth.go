// Package auth provides platform API authentication using HMAC-SHA256 app signatures.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"
)

// Credentials holds the app key and shared secret for signing requests.
type Credentials struct {
	KeyID  string // App key ID from the platform developer console
	Secret []byte // Shared secret for HMAC signing
}

// LoadCredentials loads credentials from a key ID and a secret file path.
func LoadCredentials(keyID, secretPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, fmt.Errorf("app key ID is required")
	}
	if secretPath == "" {
		return nil, fmt.Errorf("secret path is required")
	}

	secret, err := LoadSecret(secretPath)
	if err != nil {
		return nil, fmt.Errorf("load secret: %w", err)
	}

	return &Credentials{
		KeyID:  keyID,
		Secret: secret,
	}, nil
}

// LoadSecret reads the shared secret from a file, trimming surrounding whitespace.
func LoadSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return nil, fmt.Errorf("secret file is empty")
	}

	return []byte(secret), nil
}

// SignRequest generates authentication headers for a platform API request.
// For stream connections, method should be "GET" and path the stream endpoint path.
func (c *Credentials) SignRequest(method, path string) map[string]string {
	timestampMs := time.Now().UnixMilli()

	return map[string]string{
		"WARDEN-APP-KEY":       c.KeyID,
		"WARDEN-APP-TIMESTAMP": fmt.Sprintf("%d", timestampMs),
		"WARDEN-APP-SIGNATURE": c.generateSignature(timestampMs, method, path),
	}
}

// generateSignature creates an HMAC-SHA256 signature for the given request.
// Message format: timestamp_ms + method + path
func (c *Credentials) generateSignature(timestampMs int64, method, path string) string {
	message := fmt.Sprintf("%d%s%s", timestampMs, method, path)

	mac := hmac.New(sha256.New, c.Secret)
	mac.Write([]byte(message))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// StreamPath is the path used for stream signature generation.
const StreamPath = "/v2/user"

// SignStream generates authentication headers specifically for stream connections.
func (c *Credentials) SignStream() map[string]string {
	return c.SignRequest("GET", StreamPath)
}
