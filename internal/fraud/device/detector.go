// Package device flags payments made from a device the user has not used
// before, or from an automated client.
package device

import (
	"context"
	"strings"

	"github.com/mssola/useragent"

	"warden/internal/fraud"
	fingerprint "warden/pkg/platform/middleware/device"
)

// Detector implements fraud.DeviceDetector over the fingerprints recorded in
// the user's history.
type Detector struct{}

func (Detector) DeviceAnomaly(_ context.Context, req fraud.ScoreRequest, history []fraud.Transaction) (bool, error) {
	ua := strings.TrimSpace(req.UserAgent)
	if ua != "" && useragent.New(ua).Bot() {
		return true, nil
	}
	fp := req.DeviceFingerprint
	if fp == "" {
		fp = fingerprint.Fingerprint(ua)
	}
	if fp == "" {
		return false, nil
	}

	known := false
	for _, tx := range history {
		if tx.DeviceFingerprint == "" {
			continue
		}
		if tx.DeviceFingerprint == fp {
			return false, nil
		}
		known = true
	}
	return known, nil
}
