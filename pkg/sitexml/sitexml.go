package sitexml

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/sitevault/pkg/errors"
	"github.com/arthur-debert/sitevault/pkg/secrets"
	"github.com/arthur-debert/sitevault/pkg/site"
)

// Password encoding attribute values. An absent attribute means legacy
// plaintext, which the decoder accepts for backward compatibility.
const (
	encodingBase64 = "base64"
	encodingCrypt  = "crypt"
)

// ReadSite decodes a site from the children of node. Required fields and
// enum ranges gate the whole decode; optional fields fall back to their
// documented defaults. A password sealed under an unparseable public key
// is dropped and the logon type downgraded to Ask rather than failing the
// site.
func ReadSite(node *etree.Element) (*site.Site, error) {
	s := &site.Site{}

	host := textOf(node, "Host")
	if host == "" {
		return nil, errors.New(errors.ErrInvalidSite, "missing or empty host")
	}
	if err := s.Server.SetHost(host, intOf(node, "Port")); err != nil {
		return nil, err
	}

	protocol := site.Protocol(intOf(node, "Protocol"))
	if !protocol.Valid() {
		return nil, errors.Newf(errors.ErrInvalidSite, "unknown protocol %d", int(protocol))
	}
	s.Server.Protocol = protocol

	serverType := site.ServerType(intOf(node, "Type"))
	if !serverType.Valid() {
		return nil, errors.Newf(errors.ErrInvalidSite, "unknown server type %d", int(serverType))
	}
	s.Server.Type = serverType

	logonType := site.LogonType(intOf(node, "Logontype"))
	if !logonType.Valid() {
		return nil, errors.Newf(errors.ErrInvalidSite, "unknown logon type %d", int(logonType))
	}
	s.Credentials.SetLogonType(logonType)

	if logonType != site.Anonymous {
		if err := readCredentials(node, s); err != nil {
			return nil, err
		}
	}

	if err := s.Server.SetTimezoneOffset(intOf(node, "TimezoneOffset")); err != nil {
		return nil, err
	}

	switch textOf(node, "PasvMode") {
	case "MODE_PASSIVE":
		s.Server.PasvMode = site.ModePassive
	case "MODE_ACTIVE":
		s.Server.PasvMode = site.ModeActive
	default:
		s.Server.PasvMode = site.ModeDefault
	}

	s.Server.SetMaximumMultipleConnections(intOf(node, "MaximumMultipleConnections"))

	switch textOf(node, "EncodingType") {
	case "UTF-8":
		s.Server.Encoding = site.EncodingUTF8
	case "Custom":
		if err := s.Server.SetEncoding(site.EncodingCustom, textOf(node, "CustomEncoding")); err != nil {
			return nil, err
		}
	default:
		s.Server.Encoding = site.EncodingAuto
	}

	if s.Server.Protocol.HasPostLoginCommands() {
		var commands []string
		if element := node.SelectElement("PostLoginCommands"); element != nil {
			for _, commandElement := range element.SelectElements("Command") {
				if command := commandElement.Text(); command != "" {
					commands = append(commands, command)
				}
			}
		}
		if err := s.Server.SetPostLoginCommands(commands); err != nil {
			return nil, err
		}
	}

	s.Server.BypassProxy = intOf(node, "BypassProxy") == 1

	s.Server.SetName(textOf(node, "Name"))
	if s.Server.Name == "" {
		s.Server.SetName(strings.TrimSpace(node.Text()))
	}

	for _, parameter := range node.SelectElements("Parameter") {
		s.Server.SetExtraParameter(parameter.SelectAttrValue("Name", ""), parameter.Text())
	}

	return s, nil
}

// readCredentials handles everything below the logon type for
// non-anonymous sites.
func readCredentials(node *etree.Element, s *site.Site) error {
	logonType := s.Credentials.LogonType

	user := textOf(node, "User")
	if user == "" && logonType != site.Interactive && logonType != site.Ask {
		return errors.New(errors.ErrInvalidSite, "missing username")
	}

	var pass string
	var encryptedKey *secrets.PublicKey

	switch logonType {
	case site.Normal, site.Account:
		if passElement := node.SelectElement("Pass"); passElement != nil {
			switch encoding := passElement.SelectAttrValue("encoding", ""); encoding {
			case encodingBase64:
				if decoded, err := base64.StdEncoding.DecodeString(passElement.Text()); err == nil {
					pass = string(decoded)
				}
			case encodingCrypt:
				pass = passElement.Text()
				key, err := secrets.ParsePublicKey(passElement.SelectAttrValue("pubkey", ""))
				if err != nil {
					// A corrupt key must not sink the whole site; drop the
					// password and ask again next time.
					pass = ""
					s.Credentials.SetLogonType(site.Ask)
				} else {
					encryptedKey = &key
				}
			case "":
				pass = passElement.Text()
			default:
				s.Credentials.SetLogonType(site.Ask)
			}
		}
	case site.Key:
		s.Credentials.KeyFile = textOf(node, "Keyfile")
		pass = ""
	}

	s.Credentials.User = user
	s.Credentials.Password = pass
	s.Credentials.EncryptedKey = encryptedKey
	s.Credentials.Account = textOf(node, "Account")
	return nil
}

// WriteSite encodes s into node, replacing all existing children. When a
// sealer is given, unprotected passwords are sealed under its key first;
// without one they are written base64-encoded. Cleartext is never
// produced.
func WriteSite(node *etree.Element, s *site.Site, sealer secrets.Sealer) error {
	if node == nil {
		return nil
	}

	for len(node.Child) > 0 {
		node.RemoveChildAt(0)
	}

	addText(node, "Host", s.Server.Host)
	addText(node, "Port", strconv.Itoa(s.Server.Port))
	addText(node, "Protocol", strconv.Itoa(int(s.Server.Protocol)))
	addText(node, "Type", strconv.Itoa(int(s.Server.Type)))

	credentials := s.Credentials

	if credentials.LogonType != site.Anonymous {
		addText(node, "User", credentials.User)

		if sealer != nil {
			if err := credentials.Protect(sealer); err != nil {
				return err
			}
		}

		switch credentials.LogonType {
		case site.Normal, site.Account:
			var passElement *etree.Element
			if credentials.Protected() {
				passElement = addText(node, "Pass", credentials.Password)
				passElement.CreateAttr("encoding", encodingCrypt)
				passElement.CreateAttr("pubkey", credentials.EncryptedKey.Base64())
			} else {
				passElement = addText(node, "Pass", base64.StdEncoding.EncodeToString([]byte(credentials.Password)))
				passElement.CreateAttr("encoding", encodingBase64)
			}

			if credentials.LogonType == site.Account {
				addText(node, "Account", credentials.Account)
			}
		default:
			if credentials.KeyFile != "" {
				addText(node, "Keyfile", credentials.KeyFile)
			}
		}
	}
	addText(node, "Logontype", strconv.Itoa(int(credentials.LogonType)))

	addText(node, "TimezoneOffset", strconv.Itoa(s.Server.TimezoneOffset))

	switch s.Server.PasvMode {
	case site.ModePassive:
		addText(node, "PasvMode", "MODE_PASSIVE")
	case site.ModeActive:
		addText(node, "PasvMode", "MODE_ACTIVE")
	default:
		addText(node, "PasvMode", "MODE_DEFAULT")
	}
	addText(node, "MaximumMultipleConnections", strconv.Itoa(s.Server.MaximumMultipleConnections))

	switch s.Server.Encoding {
	case site.EncodingUTF8:
		addText(node, "EncodingType", "UTF-8")
	case site.EncodingCustom:
		addText(node, "EncodingType", "Custom")
		addText(node, "CustomEncoding", s.Server.CustomEncoding)
	default:
		addText(node, "EncodingType", "Auto")
	}

	if s.Server.Protocol.HasPostLoginCommands() && len(s.Server.PostLoginCommands) > 0 {
		element := node.CreateElement("PostLoginCommands")
		for _, command := range s.Server.PostLoginCommands {
			addText(element, "Command", command)
		}
	}

	bypassProxy := "0"
	if s.Server.BypassProxy {
		bypassProxy = "1"
	}
	addText(node, "BypassProxy", bypassProxy)

	if s.Server.Name != "" {
		addText(node, "Name", s.Server.Name)
	}

	for _, parameter := range s.Server.ExtraParameters {
		element := addText(node, "Parameter", parameter.Value)
		element.CreateAttr("Name", parameter.Name)
	}

	return nil
}

// textOf returns the text content of the named child element, or "".
func textOf(node *etree.Element, name string) string {
	if child := node.SelectElement(name); child != nil {
		return child.Text()
	}
	return ""
}

// intOf returns the integer text content of the named child element, or 0
// when absent or malformed.
func intOf(node *etree.Element, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(textOf(node, name)))
	if err != nil {
		return 0
	}
	return n
}

func addText(parent *etree.Element, tag, text string) *etree.Element {
	element := parent.CreateElement(tag)
	if text != "" {
		element.SetText(text)
	}
	return element
}
