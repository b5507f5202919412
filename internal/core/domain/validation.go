package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Validation errors surfaced at entity construction. Everything past
// construction is advisory: the builder and optimizer degrade with issues
// instead of failing.
var (
	ErrMissingDeviceID       = errors.New("device_id is required")
	ErrMissingName           = errors.New("name is required")
	ErrInvalidMAC            = errors.New("invalid mac address")
	ErrInvalidPriority       = errors.New("bridge priority out of range 0-65535")
	ErrNegativePortIdx       = errors.New("port_idx must be non-negative")
	ErrNegativePathCost      = errors.New("path_cost must be non-negative")
	ErrRootBridgeHasRootPort = errors.New("root bridge must not have a root port")
	ErrUnknownRootPort       = errors.New("root_port_idx does not reference a known port")
)

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// IsValidMAC checks if the string is a valid MAC address.
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// NormalizeMAC lowercases a MAC and strips separators, for use as a stable
// comparison key across firmware formats (aa:bb.., AA-BB.., aabb..).
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.ReplaceAll(mac, ":", "")
	return strings.ReplaceAll(mac, "-", "")
}

// IsValidPriority checks a bridge priority is within the 802.1D range.
// Multiples of 4096 are conventional but not enforced here; some firmware
// reports the extended system ID folded in.
func IsValidPriority(p int) bool {
	return p >= 0 && p <= 65535
}
