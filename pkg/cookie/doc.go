// Package cookie reads and writes HTTP cookies with shared attributes, and
// protects values with a server secret.
//
// Signed values are stored as base64(value) "." base64(HMAC-SHA256) and can be
// read by the client but not altered. Encrypted values are sealed with
// AES-256-GCM under a key derived from the secret.
//
//	m, err := cookie.New(cookie.Config{Secret: os.Getenv("COOKIE_SECRET"), Secure: true})
//	if err != nil {
//		return err
//	}
//	_ = m.SetSigned(w, "theme", "dark", 3600)
//	theme, err := m.GetSigned(r, "theme") // ErrBadSig if the client changed it
//
// Without a secret only the plain Get, Set and Delete work; the signed and
// encrypted variants return ErrNoSecret.
package cookie
