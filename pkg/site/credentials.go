package site

import (
	"github.com/arthur-debert/sitevault/pkg/secrets"
)

// Credentials holds how to log on to a server. When EncryptedKey is
// non-nil the Password field carries ciphertext sealed under that key;
// otherwise it is plaintext held only in memory.
type Credentials struct {
	LogonType LogonType
	User      string
	Password  string
	Account   string
	KeyFile   string

	EncryptedKey *secrets.PublicKey
}

// Protected reports whether the password is currently sealed.
func (c *Credentials) Protected() bool {
	return c.EncryptedKey != nil
}

// SetLogonType switches the logon type, clearing the password for logon
// types that must not carry one.
func (c *Credentials) SetLogonType(t LogonType) {
	c.LogonType = t
	if t == Key || t == Anonymous {
		c.Password = ""
		c.EncryptedKey = nil
	}
}

// Protect seals the password under the sealer's public key. Protecting
// already-protected credentials is a no-op. Only Normal and Account logon
// types carry a password worth sealing.
func (c *Credentials) Protect(sealer secrets.Sealer) error {
	if c.Protected() {
		return nil
	}
	if c.LogonType != Normal && c.LogonType != Account {
		return nil
	}
	if c.Password == "" {
		return nil
	}

	ciphertext, err := sealer.Seal(c.Password)
	if err != nil {
		return err
	}
	key := sealer.Key()
	c.Password = ciphertext
	c.EncryptedKey = &key
	return nil
}

// Unprotect restores the plaintext password using the private half of the
// sealing key. A no-op on unprotected credentials.
func (c *Credentials) Unprotect(pair *secrets.KeyPair) error {
	if !c.Protected() {
		return nil
	}
	plaintext, err := pair.Open(c.Password)
	if err != nil {
		return err
	}
	c.Password = plaintext
	c.EncryptedKey = nil
	return nil
}
