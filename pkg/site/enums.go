package site

// Protocol identifies the wire protocol of a server entry. Values are
// stored numerically in the document, so the order is part of the on-disk
// format and must not change.
type Protocol int

const (
	FTP Protocol = iota
	FTPS
	FTPES
	SFTP
	InsecureFTP

	protocolCount
)

// Valid reports whether p is within the known protocol range.
func (p Protocol) Valid() bool {
	return p >= 0 && p < protocolCount
}

func (p Protocol) String() string {
	switch p {
	case FTP:
		return "FTP"
	case FTPS:
		return "FTPS"
	case FTPES:
		return "FTPES"
	case SFTP:
		return "SFTP"
	case InsecureFTP:
		return "InsecureFTP"
	}
	return "unknown"
}

// HasPostLoginCommands reports whether the protocol supports sending
// commands after login. Only the FTP family does.
func (p Protocol) HasPostLoginCommands() bool {
	switch p {
	case FTP, FTPS, FTPES, InsecureFTP:
		return true
	}
	return false
}

// ServerType identifies the remote directory listing convention. Stored
// numerically; order is part of the on-disk format.
type ServerType int

const (
	TypeDefault ServerType = iota
	TypeUnix
	TypeVMS
	TypeDOS
	TypeMVS
	TypeVxWorks
	TypeZVM
	TypeHPNonStop
	TypeDOSVirtual
	TypeCygwin

	serverTypeCount
)

// Valid reports whether t is within the known server type range.
func (t ServerType) Valid() bool {
	return t >= 0 && t < serverTypeCount
}

// LogonType describes how credentials are supplied. Stored numerically;
// order is part of the on-disk format.
type LogonType int

const (
	Anonymous LogonType = iota
	Normal
	Ask
	Interactive
	Account
	Key

	logonTypeCount
)

// Valid reports whether l is within the known logon type range.
func (l LogonType) Valid() bool {
	return l >= 0 && l < logonTypeCount
}

func (l LogonType) String() string {
	switch l {
	case Anonymous:
		return "anonymous"
	case Normal:
		return "normal"
	case Ask:
		return "ask"
	case Interactive:
		return "interactive"
	case Account:
		return "account"
	case Key:
		return "key"
	}
	return "unknown"
}

// PasvMode selects the transfer mode for FTP-family connections.
type PasvMode int

const (
	ModeDefault PasvMode = iota
	ModeActive
	ModePassive
)

// EncodingType selects how remote filenames are decoded.
type EncodingType int

const (
	EncodingAuto EncodingType = iota
	EncodingUTF8
	EncodingCustom
)
