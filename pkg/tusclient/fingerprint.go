package tusclient

import "regexp"

var reNonWord = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// defaultFingerprint derives a stable identifier from a file's path by
// collapsing every run of non-word characters into a single dot. Callers
// needing collision resistance across files with the same path on
// different volumes, or any other identity scheme, should supply their own
// fingerprint via Options.Fingerprint instead.
func defaultFingerprint(path string) string {
	return reNonWord.ReplaceAllString(path, ".")
}
