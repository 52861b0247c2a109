package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
)

// SessionKeyEnv names the env var holding the 32-byte cookie encryption key
const SessionKeyEnv = "TRASH_SESSION_KEY"

// Session is the browser-local state carried in the session cookie
type Session struct {
	ID       string   `json:"id"`
	Language string   `json:"lang,omitempty"`
	DarkMode bool     `json:"dark,omitempty"`
	Recent   []string `json:"recent,omitempty"`
}

// NewSession returns an empty session with a fresh ID
func NewSession(language string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Language: language,
	}
}

type SessionService struct {
	encryptionKey []byte
}

// NewSessionService creates a session service with a key from env or generates one (ephemeral)
func NewSessionService() *SessionService {
	key := os.Getenv(SessionKeyEnv)
	if len(key) != 32 {
		// Generated keys invalidate every session on restart.
		newKey := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, newKey); err != nil {
			panic("failed to generate random key")
		}
		return &SessionService{encryptionKey: newKey}
	}
	return &SessionService{encryptionKey: []byte(key)}
}

// Encrypt serializes and encrypts a session into a cookie value
func (s *SessionService) Encrypt(sess Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	gcm, err := s.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, data, nil)
	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt decodes a cookie value back into a Session
func (s *SessionService) Decrypt(encrypted string) (*Session, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}

	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("malformed ciphertext")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(plaintext, &sess); err != nil {
		return nil, err
	}
	if sess.ID == "" {
		return nil, errors.New("session without id")
	}

	return &sess, nil
}

func (s *SessionService) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
