// Package auth implements API key handling for the ScanPro API server.
// Keys carry the sk_ prefix with a random base32 body and are stored
// only as bcrypt hashes in the configuration file, never in plain text.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// API key generation and validation constants
const (
	// APIKeyLength is the length of the random part of an API key
	APIKeyLength = 32
	// APIKeyPrefix is the standard prefix for all API keys
	APIKeyPrefix = "sk"

	// BcryptCost is the bcrypt cost used when hashing API keys
	BcryptCost = 12
	// BcryptMaxInputLength is the maximum input length for bcrypt (72 bytes)
	BcryptMaxInputLength = 72

	// MinAPIKeyNameLength is the minimum length for API key names
	MinAPIKeyNameLength = 1
	// MaxAPIKeyNameLength is the maximum length for API key names
	MaxAPIKeyNameLength = 255
)

// GeneratedAPIKey is a freshly minted API key together with the bcrypt
// hash that goes into the configuration file. The plain key is shown
// once at generation time and never stored.
type GeneratedAPIKey struct {
	Key       string    `json:"key"`        // The actual API key (only shown once)
	Name      string    `json:"name"`       // Operator-chosen key name
	KeyPrefix string    `json:"key_prefix"` // Display-safe prefix
	Hash      string    `json:"hash"`       // Bcrypt hash for the config file
	CreatedAt time.Time `json:"created_at"`
}

// GenerateAPIKey creates a new API key with the specified name and
// hashes it for storage.
func GenerateAPIKey(name string) (*GeneratedAPIKey, error) {
	if err := validateKeyName(name); err != nil {
		return nil, fmt.Errorf("invalid key name: %w", err)
	}

	// Generate the random part of the key
	randomBytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	// Use base32 encoding for better readability (no ambiguous characters)
	randomPart := strings.ToLower(base32.StdEncoding.EncodeToString(randomBytes))
	// Trim padding and take exactly APIKeyLength characters
	if len(randomPart) > APIKeyLength {
		randomPart = randomPart[:APIKeyLength]
	}

	fullKey := fmt.Sprintf("%s_%s", APIKeyPrefix, randomPart)

	hash, err := HashAPIKey(fullKey)
	if err != nil {
		return nil, err
	}

	return &GeneratedAPIKey{
		Key:       fullKey,
		Name:      name,
		KeyPrefix: CreateDisplayPrefix(fullKey),
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HashAPIKey creates a bcrypt hash of an API key for secure storage.
func HashAPIKey(apiKey string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("API key cannot be empty")
	}

	// bcrypt has a 72-byte limit, so longer keys are first hashed with SHA-256
	keyBytes := []byte(apiKey)
	if len(keyBytes) > BcryptMaxInputLength {
		sha256Hash := sha256.Sum256(keyBytes)
		keyBytes = sha256Hash[:]
	}

	hash, err := bcrypt.GenerateFromPassword(keyBytes, BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}

	return string(hash), nil
}

// ValidateAPIKey checks if a provided API key matches the stored hash.
func ValidateAPIKey(apiKey, storedHash string) bool {
	if apiKey == "" || storedHash == "" {
		return false
	}

	// Apply the same pre-processing as HashAPIKey for consistency
	keyBytes := []byte(apiKey)
	if len(keyBytes) > BcryptMaxInputLength {
		sha256Hash := sha256.Sum256(keyBytes)
		keyBytes = sha256Hash[:]
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), keyBytes)
	return err == nil
}

// IsValidAPIKeyFormat checks if an API key has the correct format.
func IsValidAPIKeyFormat(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	if !strings.HasPrefix(apiKey, APIKeyPrefix+"_") {
		return false
	}

	// Total length covers prefix, underscore, and random part
	if len(apiKey) < 15 || len(apiKey) > 50 {
		return false
	}

	// Only alphanumeric characters and underscores are allowed
	for _, char := range apiKey {
		if (char < 'a' || char > 'z') &&
			(char < 'A' || char > 'Z') &&
			(char < '0' || char > '9') &&
			char != '_' {
			return false
		}
	}

	return true
}

// CreateDisplayPrefix creates a safe-to-display prefix from a full API key,
// e.g. "sk_abcd1234...".
func CreateDisplayPrefix(apiKey string) string {
	if !IsValidAPIKeyFormat(apiKey) {
		return "invalid_key"
	}

	parts := strings.Split(apiKey, "_")
	if len(parts) < 2 {
		return "invalid_key"
	}

	if len(parts[1]) >= 8 {
		return fmt.Sprintf("%s_%s...", parts[0], parts[1][:8])
	}

	return fmt.Sprintf("%s_%s...", parts[0], parts[1])
}

// Keyring holds the API keys the server accepts, loaded from the auth
// section of the configuration. It is safe for concurrent use;
// configuration reload replaces the keys while requests keep matching.
type Keyring struct {
	mu      sync.RWMutex
	entries []keyringEntry
}

type keyringEntry struct {
	name string
	hash string
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{}
}

// Add registers a named bcrypt hash with the keyring.
func (r *Keyring) Add(name, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, keyringEntry{name: name, hash: hash})
}

// ReplaceAll swaps the registered keys for the given name to hash set
// in one step.
func (r *Keyring) ReplaceAll(hashes map[string]string) {
	entries := make([]keyringEntry, 0, len(hashes))
	for name, hash := range hashes {
		entries = append(entries, keyringEntry{name: name, hash: hash})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = entries
}

// Len reports the number of registered keys.
func (r *Keyring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Match checks apiKey against every registered hash and reports the name
// of the first key that matches. Values that do not look like ScanPro
// API keys are rejected before any bcrypt comparison.
func (r *Keyring) Match(apiKey string) (string, bool) {
	if !IsValidAPIKeyFormat(apiKey) {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if ValidateAPIKey(apiKey, e.hash) {
			return e.name, true
		}
	}

	return "", false
}

// validateKeyName validates the API key name.
func validateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("key name cannot be empty")
	}

	if len(name) < MinAPIKeyNameLength {
		return fmt.Errorf("key name must be at least %d characters", MinAPIKeyNameLength)
	}

	if len(name) > MaxAPIKeyNameLength {
		return fmt.Errorf("key name must be at most %d characters", MaxAPIKeyNameLength)
	}

	// Allow Unicode, but block control and directional formatting characters
	for _, char := range name {
		// ASCII control characters (0-31 and 127)
		if char < 32 || char == 127 {
			return fmt.Errorf("key name contains invalid characters")
		}

		// U+0080-U+009F: C1 controls
		// U+202A-U+202E: bidirectional formatting (including RTL override)
		// U+2066-U+2069: directional isolates
		if (char >= 0x0080 && char <= 0x009F) ||
			(char >= 0x202A && char <= 0x202E) ||
			(char >= 0x2066 && char <= 0x2069) {
			return fmt.Errorf("key name contains invalid characters")
		}
	}

	return nil
}
