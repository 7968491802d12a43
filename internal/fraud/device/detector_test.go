package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/fraud"
	fingerprint "warden/pkg/platform/middleware/device"
)

const (
	firefox = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	iphone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	crawler = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestDeviceAnomaly(t *testing.T) {
	history := []fraud.Transaction{{DeviceFingerprint: fingerprint.Fingerprint(firefox)}}

	tests := []struct {
		name     string
		req      fraud.ScoreRequest
		history  []fraud.Transaction
		expected bool
	}{
		{"known device", fraud.ScoreRequest{UserAgent: firefox}, history, false},
		{"new device", fraud.ScoreRequest{UserAgent: iphone}, history, true},
		{"first device is never anomalous", fraud.ScoreRequest{UserAgent: iphone}, nil, false},
		{"automated client", fraud.ScoreRequest{UserAgent: crawler}, nil, true},
		{"explicit fingerprint wins", fraud.ScoreRequest{DeviceFingerprint: fingerprint.Fingerprint(firefox), UserAgent: iphone}, history, false},
		{"no device data", fraud.ScoreRequest{}, history, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detector{}.DeviceAnomaly(context.Background(), tt.req, tt.history)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
