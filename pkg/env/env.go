package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the storefront reads.
const Prefix = "LOJA_"

// Get returns LOJA_<key>, then the bare key, then fallback.
func Get(key, fallback string) string {
	if val, ok := Lookup(key); ok {
		return val
	}
	return fallback
}

// Lookup resolves key with the LOJA_ prefix taking precedence. Blank values count as unset.
func Lookup(key string) (string, bool) {
	key = strings.TrimPrefix(key, Prefix)
	for _, candidate := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(candidate)); val != "" {
			return val, true
		}
	}
	return "", false
}
