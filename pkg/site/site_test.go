package site_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/sitevault/pkg/errors"
	"github.com/arthur-debert/sitevault/pkg/secrets"
	"github.com/arthur-debert/sitevault/pkg/site"
)

func TestSetHost(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		port    int
		wantErr bool
	}{
		{"valid host and port", "ftp.example.com", 21, false},
		{"lowest valid port", "ftp.example.com", 1, false},
		{"highest valid port", "ftp.example.com", 65535, false},
		{"port zero", "ftp.example.com", 0, true},
		{"port too high", "ftp.example.com", 65536, true},
		{"empty host", "", 21, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s site.Server
			err := s.SetHost(tt.host, tt.port)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidSite))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, s.Host)
			assert.Equal(t, tt.port, s.Port)
		})
	}
}

func TestSetTimezoneOffset(t *testing.T) {
	var s site.Server

	require.NoError(t, s.SetTimezoneOffset(0))
	require.NoError(t, s.SetTimezoneOffset(site.MaxTimezoneOffset))
	require.NoError(t, s.SetTimezoneOffset(-site.MaxTimezoneOffset))
	require.Error(t, s.SetTimezoneOffset(site.MaxTimezoneOffset+1))
	require.Error(t, s.SetTimezoneOffset(-site.MaxTimezoneOffset-1))
}

func TestSetEncoding(t *testing.T) {
	var s site.Server

	require.NoError(t, s.SetEncoding(site.EncodingAuto, ""))
	require.NoError(t, s.SetEncoding(site.EncodingUTF8, "ignored"))
	assert.Empty(t, s.CustomEncoding, "non-custom encoding should clear the custom name")

	require.NoError(t, s.SetEncoding(site.EncodingCustom, "ISO-8859-15"))
	assert.Equal(t, "ISO-8859-15", s.CustomEncoding)

	require.Error(t, s.SetEncoding(site.EncodingCustom, ""))
	require.Error(t, s.SetEncoding(site.EncodingCustom, "bad name with spaces"))
}

func TestSetPostLoginCommands(t *testing.T) {
	var s site.Server
	s.Protocol = site.FTP

	require.NoError(t, s.SetPostLoginCommands([]string{"SYST", "", "FEAT"}))
	assert.Equal(t, []string{"SYST", "FEAT"}, s.PostLoginCommands)

	s.Protocol = site.SFTP
	err := s.SetPostLoginCommands([]string{"SYST"})
	require.Error(t, err)

	require.NoError(t, s.SetPostLoginCommands(nil))
	assert.Nil(t, s.PostLoginCommands)
}

func TestSetName(t *testing.T) {
	var s site.Server

	s.SetName("  My Server  ")
	assert.Equal(t, "My Server", s.Name)

	s.SetName(strings.Repeat("x", 300))
	assert.Len(t, s.Name, site.MaxNameLength)
}

func TestExtraParametersOrderAndUpsert(t *testing.T) {
	var s site.Server

	s.SetExtraParameter("b", "2")
	s.SetExtraParameter("a", "1")
	s.SetExtraParameter("b", "3")

	require.Len(t, s.ExtraParameters, 2)
	assert.Equal(t, site.Parameter{Name: "b", Value: "3"}, s.ExtraParameters[0])
	assert.Equal(t, site.Parameter{Name: "a", Value: "1"}, s.ExtraParameters[1])

	v, ok := s.ExtraParameter("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = s.ExtraParameter("missing")
	assert.False(t, ok)
}

func TestProtectIsIdempotent(t *testing.T) {
	kp, err := secrets.GenerateKeyPair()
	require.NoError(t, err)
	sealer := secrets.NewSealer(kp.Public)

	creds := site.Credentials{LogonType: site.Normal, User: "alice", Password: "hunter2"}

	require.NoError(t, creds.Protect(sealer))
	require.True(t, creds.Protected())
	sealed := creds.Password
	assert.NotEqual(t, "hunter2", sealed)

	// Protecting again must not re-seal
	require.NoError(t, creds.Protect(sealer))
	assert.Equal(t, sealed, creds.Password)

	plaintext, err := kp.Open(creds.Password)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plaintext)
}

func TestProtectSkipsLogonTypesWithoutPassword(t *testing.T) {
	kp, err := secrets.GenerateKeyPair()
	require.NoError(t, err)
	sealer := secrets.NewSealer(kp.Public)

	for _, logonType := range []site.LogonType{site.Anonymous, site.Ask, site.Interactive, site.Key} {
		creds := site.Credentials{LogonType: logonType, Password: "ignored"}
		require.NoError(t, creds.Protect(sealer))
		assert.False(t, creds.Protected(), "logon type %s should not be sealed", logonType)
	}
}

func TestSetLogonTypeClearsPassword(t *testing.T) {
	creds := site.Credentials{LogonType: site.Normal, Password: "hunter2"}

	creds.SetLogonType(site.Key)
	assert.Empty(t, creds.Password)
	assert.False(t, creds.Protected())

	creds.Password = "again"
	creds.SetLogonType(site.Anonymous)
	assert.Empty(t, creds.Password)
}

func TestUnprotectRoundTrip(t *testing.T) {
	kp, err := secrets.GenerateKeyPair()
	require.NoError(t, err)

	creds := site.Credentials{LogonType: site.Account, User: "bob", Password: "s3cret", Account: "ops"}
	require.NoError(t, creds.Protect(secrets.NewSealer(kp.Public)))
	require.NoError(t, creds.Unprotect(kp))

	assert.False(t, creds.Protected())
	assert.Equal(t, "s3cret", creds.Password)
}
