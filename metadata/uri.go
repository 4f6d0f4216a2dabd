package metadata

import (
	"encoding/base32"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// Gateway rewrites content-addressed and bucket references to HTTP URLs
type Gateway struct {
	IPFS    string            // e.g. https://ipfs.io
	Arweave string            // e.g. https://arweave.net
	Buckets map[string]string // scheme -> public domain
}

// DefaultGateway public gateways with no bucket domains
var DefaultGateway = Gateway{
	IPFS:    "https://ipfs.io",
	Arweave: "https://arweave.net",
}

var cidV1Encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// IsCID reports whether s is a CIDv0 (base58 sha2-256 multihash) or a base32 CIDv1
func IsCID(s string) bool {
	switch {
	case len(s) == 46 && strings.HasPrefix(s, "Qm"):
		raw := base58.Decode(s)
		return len(raw) == 34 && raw[0] == 0x12 && raw[1] == 0x20
	case len(s) >= 50 && s[0] == 'b':
		body := s[1:]
		for _, r := range body {
			if !(r >= 'a' && r <= 'z') && !(r >= '2' && r <= '7') {
				return false
			}
		}
		raw, err := cidV1Encoding.DecodeString(strings.ToUpper(body))
		return err == nil && len(raw) > 2 && raw[0] == 0x01
	}
	return false
}

// NormalizeURI returns an HTTP(S) fetchable form of raw.
// ipfs://, ar://, /ipfs/ paths, bare CIDs and configured bucket schemes are rewritten;
// anything else is returned unchanged. Applying it twice gives the same result.
func (g Gateway) NormalizeURI(raw string) string {
	uri := strings.TrimSpace(raw)
	if uri == "" {
		return ""
	}
	lower := strings.ToLower(uri)

	switch {
	case strings.HasPrefix(lower, "ipfs://"):
		rest := strings.TrimLeft(uri[len("ipfs://"):], "/")
		if strings.HasPrefix(strings.ToLower(rest), "ipfs/") {
			rest = rest[len("ipfs/"):]
		}
		return g.ipfs() + "/ipfs/" + rest
	case strings.HasPrefix(lower, "ar://"):
		return g.arweave() + "/" + strings.TrimLeft(uri[len("ar://"):], "/")
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "data:"):
		return uri
	case strings.HasPrefix(uri, "/ipfs/"):
		return g.ipfs() + uri
	}

	if scheme, rest, ok := strings.Cut(uri, "://"); ok {
		if domain, found := g.Buckets[strings.ToLower(scheme)]; found && domain != "" {
			// <bucket>/<key>, the domain already names the bucket
			_, key, _ := strings.Cut(rest, "/")
			return strings.TrimRight(domain, "/") + "/" + key
		}
		return uri
	}

	head, _, _ := strings.Cut(uri, "/")
	if IsCID(head) {
		return g.ipfs() + "/ipfs/" + uri
	}
	return uri
}

// BucketRef splits s3://bucket/key style references, ok is false for other schemes
func BucketRef(uri string) (scheme, bucket, key string, ok bool) {
	scheme, rest, found := strings.Cut(strings.TrimSpace(uri), "://")
	if !found {
		return "", "", "", false
	}
	switch strings.ToLower(scheme) {
	case "s3", "oss", "minio", "file":
	default:
		return "", "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	return strings.ToLower(scheme), bucket, key, key != ""
}

func (g Gateway) ipfs() string {
	if g.IPFS == "" {
		return DefaultGateway.IPFS
	}
	return strings.TrimRight(g.IPFS, "/")
}

func (g Gateway) arweave() string {
	if g.Arweave == "" {
		return DefaultGateway.Arweave
	}
	return strings.TrimRight(g.Arweave, "/")
}
