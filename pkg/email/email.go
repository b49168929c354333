package email

import (
	"regexp"
	"strings"
)

// addressPattern is the coarse local@domain.tld shape the registration
// flow accepts. Full RFC 5322 parsing is out of scope; the identity
// provider is the final arbiter of address validity.
var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Valid reports whether the address matches local@domain.tld.
func Valid(address string) bool {
	return addressPattern.MatchString(address)
}

// Normalize trims surrounding whitespace and lowercases the domain
// part. The local part is left untouched.
func Normalize(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndexByte(address, '@')
	if at < 0 {
		return address
	}
	return address[:at+1] + strings.ToLower(address[at+1:])
}

// DisplayName assembles the identity display name from the given and
// paternal family names, matching the "first last" convention of the
// registration flow.
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}
