// Package site defines the connection profile record stored by sitevault:
// the server parameters, the credentials, and the invariants between them.
package site
