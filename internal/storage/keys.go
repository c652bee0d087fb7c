package storage

import (
	"errors"
	"net/url"
	"strings"
)

var (
	errEmptyReference = errors.New("storage: empty reference")
	errForeignHost    = errors.New("storage: host is not allow-listed")
	errForeignPrefix  = errors.New("storage: key is outside the allowed prefixes")
	errUnsafeKey      = errors.New("storage: key contains unsafe segments")
)

// KeyPolicy restricts which references may be turned into deletable keys
type KeyPolicy struct {
	AllowedHosts    []string
	AllowedPrefixes []string
	Bucket          string
}

// NormalizeStorageKey turns a stored media reference into an object key.
// References may be bare keys or absolute URLs on an allow-listed host;
// the resulting key must sit under an allow-listed prefix.
func NormalizeStorageKey(ref string, policy KeyPolicy) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errEmptyReference
	}

	key := ref
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return "", errForeignHost
		}
		if !hostAllowed(u.Hostname(), policy.AllowedHosts) {
			return "", errForeignHost
		}
		key = u.Path
	}

	key = strings.TrimPrefix(key, "/")
	if policy.Bucket != "" {
		key = strings.TrimPrefix(key, policy.Bucket+"/")
	}

	if key == "" || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return "", errUnsafeKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." || segment == "." {
			return "", errUnsafeKey
		}
	}

	for _, prefix := range policy.AllowedPrefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix != "" && strings.HasPrefix(key, prefix) {
			return key, nil
		}
	}
	return "", errForeignPrefix
}

// PublicURL expands a key into its public URL. Without a base URL the key is returned unchanged.
func PublicURL(base, key string) string {
	if key == "" || base == "" || strings.Contains(key, "://") {
		return key
	}
	u, err := url.JoinPath(base, strings.Split(key, "/")...)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + key
	}
	return u
}

func hostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	for _, h := range allowed {
		if strings.ToLower(strings.TrimSpace(h)) == host && host != "" {
			return true
		}
	}
	return false
}
