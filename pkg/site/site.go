package site

import (
	"strings"

	"github.com/arthur-debert/sitevault/pkg/errors"
)

// MaxNameLength caps the display name of a site.
const MaxNameLength = 255

// MaxTimezoneOffset bounds the timezone offset in minutes (one day).
const MaxTimezoneOffset = 24 * 60

// Parameter is one extra named value attached to a server entry. Order of
// parameters is preserved through encode/decode.
type Parameter struct {
	Name  string
	Value string
}

// Server holds the connection parameters of a site.
type Server struct {
	Host     string
	Port     int
	Protocol Protocol
	Type     ServerType

	TimezoneOffset             int // minutes
	PasvMode                   PasvMode
	MaximumMultipleConnections int
	Encoding                   EncodingType
	CustomEncoding             string
	PostLoginCommands          []string
	BypassProxy                bool
	Name                       string

	ExtraParameters []Parameter
}

// Site is one connection profile: server parameters plus credentials.
type Site struct {
	Server      Server
	Credentials Credentials
}

// SetHost validates and records the host and port.
func (s *Server) SetHost(host string, port int) error {
	if host == "" {
		return errors.New(errors.ErrInvalidSite, "host must not be empty")
	}
	if port < 1 || port > 65535 {
		return errors.Newf(errors.ErrInvalidSite, "port %d outside [1, 65535]", port)
	}
	s.Host = host
	s.Port = port
	return nil
}

// SetTimezoneOffset validates and records the offset in minutes.
func (s *Server) SetTimezoneOffset(minutes int) error {
	if minutes < -MaxTimezoneOffset || minutes > MaxTimezoneOffset {
		return errors.Newf(errors.ErrInvalidSite, "timezone offset %d outside [-%d, %d]", minutes, MaxTimezoneOffset, MaxTimezoneOffset)
	}
	s.TimezoneOffset = minutes
	return nil
}

// SetMaximumMultipleConnections records the connection limit, clamping
// negative values to 0 (unlimited).
func (s *Server) SetMaximumMultipleConnections(n int) {
	if n < 0 {
		n = 0
	}
	s.MaximumMultipleConnections = n
}

// SetEncoding validates and records the filename encoding choice. A Custom
// choice requires a plausible encoding name.
func (s *Server) SetEncoding(encoding EncodingType, custom string) error {
	if encoding == EncodingCustom {
		if custom == "" {
			return errors.New(errors.ErrInvalidSite, "custom encoding selected but no encoding name given")
		}
		if !validEncodingName(custom) {
			return errors.Newf(errors.ErrInvalidSite, "invalid custom encoding name %q", custom)
		}
	} else {
		custom = ""
	}
	s.Encoding = encoding
	s.CustomEncoding = custom
	return nil
}

// SetPostLoginCommands records the commands sent after login. Rejected for
// protocols without the capability; empty commands are dropped.
func (s *Server) SetPostLoginCommands(commands []string) error {
	kept := make([]string, 0, len(commands))
	for _, command := range commands {
		if command != "" {
			kept = append(kept, command)
		}
	}
	if len(kept) > 0 && !s.Protocol.HasPostLoginCommands() {
		return errors.Newf(errors.ErrInvalidSite, "protocol %s does not support post-login commands", s.Protocol)
	}
	if len(kept) == 0 {
		kept = nil
	}
	s.PostLoginCommands = kept
	return nil
}

// SetName trims the display name and caps it at MaxNameLength runes.
func (s *Server) SetName(name string) {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = string(runes[:MaxNameLength])
	}
	s.Name = name
}

// SetExtraParameter upserts a named parameter, preserving the order of
// first appearance.
func (s *Server) SetExtraParameter(name, value string) {
	for i := range s.ExtraParameters {
		if s.ExtraParameters[i].Name == name {
			s.ExtraParameters[i].Value = value
			return
		}
	}
	s.ExtraParameters = append(s.ExtraParameters, Parameter{Name: name, Value: value})
}

// ExtraParameter returns the value of a named parameter, if present.
func (s *Server) ExtraParameter(name string) (string, bool) {
	for i := range s.ExtraParameters {
		if s.ExtraParameters[i].Name == name {
			return s.ExtraParameters[i].Value, true
		}
	}
	return "", false
}

// validEncodingName accepts charset-like names: letters, digits and a few
// separators, e.g. "ISO-8859-15" or "Shift_JIS".
func validEncodingName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.' || r == ':':
		default:
			return false
		}
	}
	return true
}
