// Package codec converts raw signature bytes to and from the unpadded
// base64url wire form.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"

	"signet/internal/domain"
)

var (
	toURL = strings.NewReplacer("+", "-", "/", "_")
	toStd = strings.NewReplacer("-", "+", "_", "/")
)

// EncodeSignature maps sig to the standard base64 alphabet with '+' and '/'
// replaced by '-' and '_' and trailing padding stripped.
func EncodeSignature(sig []byte) string {
	std := base64.StdEncoding.EncodeToString(sig)
	return strings.TrimRight(toURL.Replace(std), "=")
}

var strictStd = base64.StdEncoding.Strict()

// DecodeSignature reverses EncodeSignature. Padding is restored as
// (4 - len%4) % 4 '=' characters before standard decoding. Line breaks and
// non-zero trailing bits are rejected.
func DecodeSignature(value string) ([]byte, error) {
	if strings.ContainsAny(value, "\r\n") {
		return nil, fmt.Errorf("%w: line break in signature", domain.ErrDecode)
	}
	std := toStd.Replace(value)
	if pad := (4 - len(std)%4) % 4; pad > 0 {
		std += strings.Repeat("=", pad)
	}
	raw, err := strictStd.DecodeString(std)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return raw, nil
}
