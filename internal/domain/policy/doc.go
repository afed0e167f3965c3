// Package policy decides what the connector may do before it touches the
// filesystem.
//
// Three rule sets are evaluated:
//   - Actions: the configured capability list, plus "edit" when the editor
//     is enabled
//   - Extensions: the upload policy (DISALLOW_ALL treats the restriction
//     list as an allow-list, ALLOW_ALL as a deny-list, anything else
//     allows every extension)
//   - Excludes: paths hidden from folder listings, given as exact paths,
//     base names, doublestar globs or a regular expression on the base name
//
// An Engine is built once from the connector configuration and is safe for
// concurrent use.
package policy
