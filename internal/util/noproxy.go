package util

import "strings"

// bypassProxy reports whether host matches the comma-separated NO_PROXY list.
// Entries match exactly or as a domain suffix; "*" matches everything.
func bypassProxy(host, noProxy string) bool {
	if noProxy == "" || host == "" {
		return false
	}
	host = strings.ToLower(host)
	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
			continue
		case entry == "*":
			return true
		case host == strings.TrimPrefix(entry, "."):
			return true
		case strings.HasSuffix(host, "."+strings.TrimPrefix(entry, ".")):
			return true
		}
	}
	return false
}
