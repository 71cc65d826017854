package credential

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// BasicPrefix is the case-sensitive scheme prefix of a Basic authorization value.
const BasicPrefix = "Basic "

// Credentials is a decoded username/password pair. It lives for one request
// and is never persisted.
type Credentials struct {
	Username string
	Password string
}

// String hides the password so Credentials can be logged safely.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// DecodeBasicHeader returns the encoded part of a Basic authorization value.
// present is false when the header was not sent at all.
func DecodeBasicHeader(value string, present bool) (string, bool) {
	if !present {
		return "", false
	}
	if !strings.HasPrefix(value, BasicPrefix) {
		return "", false
	}
	return value[len(BasicPrefix):], true
}

// DecodeBase64 decodes standard, padded base64 and requires the result to be
// valid UTF-8.
func DecodeBase64(encoded string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentials splits decoded credentials on the first colon. Any further
// colons belong to the password.
func SplitCredentials(decoded string) (Credentials, bool) {
	username, password, found := strings.Cut(decoded, ":")
	if !found {
		return Credentials{}, false
	}
	return Credentials{Username: username, Password: password}, true
}

// ParseBasic runs the full decode pipeline on a header value.
func ParseBasic(value string, present bool) (Credentials, bool) {
	encoded, ok := DecodeBasicHeader(value, present)
	if !ok {
		return Credentials{}, false
	}
	decoded, ok := DecodeBase64(encoded)
	if !ok {
		return Credentials{}, false
	}
	return SplitCredentials(decoded)
}

// EncodeBasic builds a complete Basic authorization value.
func EncodeBasic(username, password string) string {
	return BasicPrefix + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
