// Package sitexml maps site records to and from XML subtrees. The mapping
// is stateless and all-or-nothing on required fields: a node that fails
// validation never yields a partially populated site. The credential
// policy accepts legacy plaintext passwords but never writes them back.
package sitexml
