package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MinSecretLength is the shortest accepted secret.
const MinSecretLength = 32

// Config holds cookie attributes, read from the environment with pkg/config.
type Config struct {
	Secret   string `env:"COOKIE_SECRET"`
	Domain   string `env:"COOKIE_DOMAIN"`
	Path     string `env:"COOKIE_PATH" envDefault:"/"`
	SameSite string `env:"COOKIE_SAMESITE" envDefault:"lax"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
}

// Manager applies one set of attributes to every cookie it writes.
// The zero value is not usable; call New.
type Manager struct {
	secret   []byte
	aead     cipher.AEAD
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
}

// New creates a Manager. An empty secret disables signing and encryption; a
// non-empty one shorter than MinSecretLength is rejected.
func New(cfg Config) (*Manager, error) {
	m := &Manager{
		domain:   cfg.Domain,
		path:     cfg.Path,
		secure:   cfg.Secure,
		sameSite: parseSameSite(cfg.SameSite),
	}
	if m.path == "" {
		m.path = "/"
	}
	if cfg.Secret == "" {
		return m, nil
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrBadSecret
	}

	m.secret = []byte(cfg.Secret)
	key := sha256.Sum256(m.secret)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	if m.aead, err = cipher.NewGCM(block); err != nil {
		return nil, err
	}
	return m, nil
}

// Signing reports whether a secret is configured.
func (m *Manager) Signing() bool { return m.secret != nil }

// Cookie returns a cookie carrying value with the manager's attributes.
// maxAge follows http.Cookie: 0 is a session cookie, negative deletes.
func (m *Manager) Cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

// Get returns the raw value of the named cookie, or ErrNotFound.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.Cookie(name, value, maxAge))
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.Cookie(name, "", -1))
}

// Sign returns value with its HMAC appended.
func (m *Manager) Sign(value string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(value)) + "." + enc.EncodeToString(m.mac([]byte(value))), nil
}

// Verify returns the value inside a string produced by Sign.
func (m *Manager) Verify(signed string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	encValue, encSig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil || !hmac.Equal(sig, m.mac(value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// GetSigned returns the verified value of a cookie written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.secret == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Verify(raw)
}

// SetSigned writes a tamper-evident cookie.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	signed, err := m.Sign(value)
	if err != nil {
		return err
	}
	m.Set(w, name, signed, maxAge)
	return nil
}

// GetEncrypted returns the plaintext of a cookie written by SetEncrypted.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if m.aead == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecrypt
	}
	n := m.aead.NonceSize()
	if len(data) < n {
		return "", ErrDecrypt
	}
	plain, err := m.aead.Open(nil, data[:n], data[n:], []byte(name))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// SetEncrypted writes a cookie whose value the client cannot read. The
// cookie name is authenticated with the value, so it cannot be moved to
// another cookie.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.aead == nil {
		return ErrNoSecret
	}
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := m.aead.Seal(nonce, nonce, []byte(value), []byte(name))
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), maxAge)
	return nil
}

func (m *Manager) mac(value []byte) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write(value)
	return h.Sum(nil)
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
