package utils

import (
	"context"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"

	"verifyproxy/models"
)

const (
	ReasonInvalidFormat = "Invalid format"
	ReasonNoMX          = "No MX records found"
	ReasonRoleAccount   = "Role-based account"
	ReasonError         = "Verification error"
)

// Verifier classifies a single address. The order of checks matters: every
// step that can decide without the network runs before any SMTP probe.
type Verifier struct {
	Resolver MXResolver
	Prober   Prober
	Sets     ReferenceSets

	randomLocalPart func() string
}

func NewVerifier(resolver MXResolver, prober Prober, sets ReferenceSets) *Verifier {
	return &Verifier{
		Resolver:        resolver,
		Prober:          prober,
		Sets:            sets,
		randomLocalPart: randomLocalPart,
	}
}

// randomLocalPart yields an address nobody owns; uuid v4 carries 122 random bits.
func randomLocalPart() string {
	return "nx" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// splitAddress returns the local part and domain of a syntactically valid address.
func splitAddress(email string) (string, string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", "", false
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return "", "", false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return "", "", false
	}
	return email[:at], domain, true
}

// VerifyEmail runs the classification pipeline for one address.
func (v *Verifier) VerifyEmail(ctx context.Context, address string) *models.VerificationResult {
	email := strings.ToLower(strings.TrimSpace(address))
	result := &models.VerificationResult{
		Email:  email,
		Result: models.ResultUnknown,
		SMTP:   models.SMTPSkipped,
	}

	local, domain, ok := splitAddress(email)
	if !ok {
		result.Result = models.ResultInvalid
		result.Reason = ReasonInvalidFormat
		return result
	}

	isRole := v.Sets.RoleAccounts.Has(local)
	result.IsRole = &isRole

	if v.Sets.Disposable.Has(domain) {
		result.Result = models.ResultDisposable
		result.Reason = "Disposable provider: " + domain
		return result
	}

	mx := v.Resolver.ResolveMX(ctx, domain)
	if !mx.Exists {
		result.Result = models.ResultInvalid
		result.Reason = ReasonNoMX
		return result
	}
	mxHost := mx.Records[0].Exchange
	result.MXHost = mxHost

	if v.Sets.SMTPBlocking.Has(domain) {
		result.Result = models.ResultRisky
		result.SMTP = models.SMTPBlocked
		result.Reason = "Provider blocks SMTP verification: " + domain
		return result
	}

	if v.Sets.KnownCatchAll.Has(domain) {
		result.Result = models.ResultCatchAll
		result.Reason = "Known catch-all provider: " + domain
		return result
	}

	probe := v.Prober.Probe(ctx, email, mxHost)
	result.SMTP = probe.Status
	result.SMTPCode = probe.Code
	result.SMTPResponse = probe.Response

	switch probe.Status {
	case models.SMTPFailed:
		result.Result = models.ResultInvalid
		result.Reason = fmt.Sprintf("Mailbox does not exist (SMTP %d)", probe.Code)
	case models.SMTPBlocked:
		result.Result = models.ResultRisky
		result.Reason = "SMTP verification blocked by mail server"
	case models.SMTPGreylisted:
		result.Result = models.ResultRisky
		result.Reason = "Greylisted or temporarily deferred"
	case models.SMTPPassed:
		catchAll := v.Prober.Probe(ctx, v.randomLocalPart()+"@"+domain, mxHost)
		switch {
		case catchAll.Status == models.SMTPPassed:
			result.Result = models.ResultCatchAll
			result.Reason = "Domain accepts all addresses (catch-all)"
		case isRole:
			result.Result = models.ResultRisky
			result.Reason = ReasonRoleAccount
		default:
			result.Result = models.ResultValid
			result.Reason = "Mailbox exists"
		}
	default:
		result.Reason = "Unexpected SMTP outcome"
	}

	return result
}
