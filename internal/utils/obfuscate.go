package utils

import (
	"encoding/base64"
	"errors"
)

// Obfuscate XORs the payload against a cyclic keystream and base64-encodes the
// result. This deters casual inspection of list payloads only; any holder of
// the key can reverse it. It is not a security boundary.
func Obfuscate(payload, key []byte) string {
	if len(key) == 0 {
		return base64.StdEncoding.EncodeToString(payload)
	}
	out := make([]byte, len(payload))
	for i, b := range payload {
		out[i] = b ^ key[i%len(key)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

// Deobfuscate reverses Obfuscate, returning the original bytes.
func Deobfuscate(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.New("malformed payload encoding")
	}
	if len(key) == 0 {
		return raw, nil
	}
	for i := range raw {
		raw[i] ^= key[i%len(key)]
	}
	return raw, nil
}
