package restriction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "warden/pkg/domain-errors"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validRequest() CreateRequest {
	return CreateRequest{
		Type:      TypeContent,
		Countries: []string{"de", "FR"},
		Reason:    "licensing",
		CreatedBy: "ops@example.com",
	}
}

func TestNew(t *testing.T) {
	t.Run("blacklist populates only blocked countries", func(t *testing.T) {
		r, err := New(validRequest(), testNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"DE", "FR"}, r.BlockedCountries)
		assert.Empty(t, r.AllowedCountries)
		assert.NotNil(t, r.AllowedCountries)
		assert.True(t, r.IsActive)
		assert.Equal(t, testNow, r.CreatedAt)
		assert.NoError(t, r.Validate())
	})

	t.Run("whitelist populates only allowed countries", func(t *testing.T) {
		req := validRequest()
		req.IsWhitelist = true
		r, err := New(req, testNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"DE", "FR"}, r.AllowedCountries)
		assert.Empty(t, r.BlockedCountries)
		assert.NoError(t, r.Validate())
	})

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		msg    string
	}{
		{"unknown type", func(r *CreateRequest) { r.Type = "casino" }, "type must be one of"},
		{"no countries", func(r *CreateRequest) { r.Countries = []string{" ", ""} }, "at least one country"},
		{"bad country code", func(r *CreateRequest) { r.Countries = []string{"DEU"} }, "alpha-2"},
		{"missing reason", func(r *CreateRequest) { r.Reason = "" }, "reason is required"},
		{"missing creator", func(r *CreateRequest) { r.CreatedBy = "" }, "created_by is required"},
		{"expiry in the past", func(r *CreateRequest) {
			past := testNow.Add(-time.Minute)
			r.ExpiresAt = &past
		}, "expires_at must be in the future"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := New(req, testNow)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.ErrorContains(t, err, tc.msg)
		})
	}
}

func TestValidate_RejectsBothOrNeitherList(t *testing.T) {
	both := &Restriction{BlockedCountries: []string{"DE"}, AllowedCountries: []string{"FR"}}
	assert.True(t, dErrors.HasCode(both.Validate(), dErrors.CodeInvariantViolation))

	neither := &Restriction{}
	assert.True(t, dErrors.HasCode(neither.Validate(), dErrors.CodeInvariantViolation))

	mismatched := &Restriction{AllowedCountries: []string{"FR"}, IsWhitelist: false}
	assert.True(t, dErrors.HasCode(mismatched.Validate(), dErrors.CodeInvariantViolation))
}

func TestEvaluate(t *testing.T) {
	blacklist := &Restriction{BlockedCountries: []string{"DE"}}
	assert.False(t, Evaluate(blacklist, "DE"))
	assert.False(t, Evaluate(blacklist, "de"), "country codes compare case-insensitively")
	assert.True(t, Evaluate(blacklist, "FR"))

	whitelist := &Restriction{AllowedCountries: []string{"US", "CA"}, IsWhitelist: true}
	assert.True(t, Evaluate(whitelist, "US"))
	assert.False(t, Evaluate(whitelist, "MX"))
	assert.False(t, Evaluate(whitelist, ""), "an unknown country never satisfies a whitelist")
}

func TestEffectiveAt(t *testing.T) {
	expiry := testNow.Add(time.Hour)
	r := &Restriction{IsActive: true, ExpiresAt: &expiry}
	assert.True(t, r.EffectiveAt(testNow))
	assert.False(t, r.EffectiveAt(expiry), "a rule expires at its ExpiresAt instant")

	r.IsActive = false
	assert.False(t, r.EffectiveAt(testNow))
}

func TestTypeHighStakes(t *testing.T) {
	assert.True(t, TypePayment.HighStakes())
	assert.True(t, TypeUserAccess.HighStakes())
	assert.False(t, TypeContent.HighStakes())
	assert.False(t, TypeFeature.HighStakes())

	_, err := ParseType("nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
