// Package privacy keeps raw client identifiers out of logs and audit records.
package privacy

import (
	"encoding/hex"
	"net"

	"golang.org/x/crypto/blake2b"
)

// AnonymizeIP truncates an address to its network prefix: /24 for IPv4 and
// /48 for IPv6. Unparseable input is returned as "invalid".
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String() + "/24"
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String() + "/48"
}

// Hasher produces stable keyed digests of personal data (document URLs,
// names, IPs) so audit events can be correlated without storing the value.
type Hasher struct {
	key []byte
}

// NewHasher builds a hasher. blake2b accepts keys up to 64 bytes; longer
// keys are truncated.
func NewHasher(key []byte) *Hasher {
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &Hasher{key: key}
}

// Hash returns the hex BLAKE2b-256 keyed digest of value.
func (h *Hasher) Hash(value string) string {
	if value == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with an oversized key, which NewHasher prevents
		sum := blake2b.Sum256([]byte(value))
		return hex.EncodeToString(sum[:])
	}
	_, _ = mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
