// Package textutil holds small text-cleaning helpers shared by the vendor
// parsers. Parsing CLI-pasted output means dealing with terminal escape
// noise before any grammar applies.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// ansiRegex matches ANSI/VT100 escape sequences (colors, cursor movement,
// and the wider CSI/OSC forms PuTTY and other terminal emulators emit).
var ansiRegex = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)

// StripANSI removes ANSI escape codes from s.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// CleanCLILine strips ANSI escapes, normalizes NBSP/tab noise, drops
// non-printable runes, and trims surrounding whitespace. Grounded on the
// Cisco ASA source parser's per-line cleaning pass.
func CleanCLILine(line string) string {
	line = StripANSI(line)
	line = strings.ReplaceAll(line, " ", " ")
	line = strings.ReplaceAll(line, "\t", " ")
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		if unicode.IsPrint(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// HasAnyPrefix reports whether s has any of the given prefixes.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// MaskToCIDR converts a dotted-decimal netmask to a CIDR prefix length by
// popcount. Falls back to "32" on anything unparsable, matching the
// original implementation's defensive default.
func MaskToCIDR(mask string) string {
	if mask == "" || !strings.Contains(mask, ".") {
		return "32"
	}
	parts := strings.Split(mask, ".")
	if len(parts) != 4 {
		return "32"
	}
	total := 0
	for _, p := range parts {
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return "32"
			}
			n = n*10 + int(c-'0')
		}
		if n < 0 || n > 255 {
			return "32"
		}
		total += popcount(n)
	}
	return itoa(total)
}

// CIDRToMask converts a CIDR prefix length to a dotted-decimal netmask.
// Inverse of MaskToCIDR; out-of-range input clamps to the nearest valid
// prefix (0-32).
func CIDRToMask(prefixLen int) string {
	if prefixLen < 0 {
		prefixLen = 0
	}
	if prefixLen > 32 {
		prefixLen = 32
	}
	octets := [4]int{}
	remaining := prefixLen
	for i := 0; i < 4; i++ {
		switch {
		case remaining >= 8:
			octets[i] = 255
			remaining -= 8
		case remaining > 0:
			octets[i] = 256 - (1 << (8 - remaining))
			remaining = 0
		default:
			octets[i] = 0
		}
	}
	return itoa(octets[0]) + "." + itoa(octets[1]) + "." + itoa(octets[2]) + "." + itoa(octets[3])
}

func popcount(n int) int {
	count := 0
	for n > 0 {
		count += n & 1
		n >>= 1
	}
	return count
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
