// Package sandbox provides deterministic KYC collaborators for local runs and
// tests. Outcomes depend only on the submitted data.
package sandbox

import (
	"context"
	"net/url"
	"strings"
	"time"

	"warden/internal/kyc"
)

const (
	documentConfidence  = 0.95
	unreadableDocument  = 0.40
	identityConfidence  = 0.90
	identityMissingData = 0.50
)

// Documents accepts any document hosted over https.
type Documents struct {
	Latency time.Duration
}

func (d Documents) VerifyDocuments(ctx context.Context, docs []kyc.Document) (kyc.DocumentResult, error) {
	if err := wait(ctx, d.Latency); err != nil {
		return kyc.DocumentResult{}, err
	}
	res := kyc.DocumentResult{Confidence: documentConfidence, Verified: make([]bool, len(docs))}
	for i, doc := range docs {
		u, err := url.Parse(doc.URL)
		res.Verified[i] = err == nil && u.Scheme == "https" && u.Host != ""
		if !res.Verified[i] {
			res.Confidence = unreadableDocument
		}
	}
	return res, nil
}

// Identity matches when names and an ISO date of birth are present.
type Identity struct {
	Latency time.Duration
}

func (i Identity) VerifyIdentity(ctx context.Context, info kyc.PersonalInfo, _ []kyc.Document) (float64, error) {
	if err := wait(ctx, i.Latency); err != nil {
		return 0, err
	}
	if _, err := time.Parse(time.DateOnly, info.DateOfBirth); err != nil {
		return identityMissingData, nil
	}
	if strings.TrimSpace(info.FirstName) == "" || strings.TrimSpace(info.LastName) == "" {
		return identityMissingData, nil
	}
	return identityConfidence, nil
}

// AML screens against fixed watch lists keyed by lower-cased "first last".
type AML struct {
	Latency   time.Duration
	Sanctions []string
	PEPs      []string
}

func (a AML) Screen(ctx context.Context, info kyc.PersonalInfo) (kyc.AMLChecks, error) {
	if err := wait(ctx, a.Latency); err != nil {
		return kyc.AMLChecks{}, err
	}
	name := strings.ToLower(strings.TrimSpace(info.FirstName) + " " + strings.TrimSpace(info.LastName))
	checks := kyc.AMLChecks{
		SanctionsList: contains(a.Sanctions, name),
		PEPCheck:      contains(a.PEPs, name),
		RiskLevel:     kyc.AMLLow,
	}
	switch {
	case checks.SanctionsList:
		checks.RiskLevel = kyc.AMLCritical
	case checks.PEPCheck:
		checks.RiskLevel = kyc.AMLHigh
	}
	return checks, nil
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
