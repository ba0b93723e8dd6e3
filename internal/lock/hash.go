package lock

import (
	"strconv"
	"unicode/utf16"
)

// PinHash digests a 4-digit PIN for storage. It reproduces the rolling hash
// the mobile clients have always written (h = h*31 + code unit over a
// wrapping 32-bit integer, decimal string), so configurations saved by older
// app versions keep verifying. It is not a cryptographic hash; it only avoids
// keeping the raw PIN in the document.
func PinHash(s string) string {
	if len(s) == 0 {
		return "0"
	}
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h<<5 - h) + int32(u)
	}
	return strconv.FormatInt(int64(h), 10)
}
