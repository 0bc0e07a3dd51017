package utils

import "strings"

// ExplorerTxUrl joins an explorer base url and a transaction hash.
func ExplorerTxUrl(baseUrl, hash string) string {
	if baseUrl == "" || hash == "" {
		return ""
	}

	return strings.TrimRight(baseUrl, "/") + "/" + hash
}
