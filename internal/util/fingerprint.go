package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint computes a stable hash for a finding key. The snippet is
// whitespace-normalised so re-indenting a line keeps its fingerprint.
func Fingerprint(ruleID, file string, line int, snippet string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|%s", ruleID, file, line, strings.Join(strings.Fields(snippet), " "))
	return hex.EncodeToString(h.Sum(nil))
}
