package models

// Result is the overall verdict for one address.
type Result string

const (
	ResultValid      Result = "valid"
	ResultInvalid    Result = "invalid"
	ResultRisky      Result = "risky"
	ResultCatchAll   Result = "catch_all"
	ResultDisposable Result = "disposable"
	ResultUnknown    Result = "unknown"
)

// SMTPStatus is the outcome of the live SMTP stage.
type SMTPStatus string

const (
	SMTPSkipped    SMTPStatus = "skipped"
	SMTPPassed     SMTPStatus = "passed"
	SMTPFailed     SMTPStatus = "failed"
	SMTPBlocked    SMTPStatus = "blocked"
	SMTPGreylisted SMTPStatus = "greylisted"
	SMTPError      SMTPStatus = "error"
)

// VerifyRequest is the body of POST /verify.
type VerifyRequest struct {
	Emails []string `json:"emails"`
}

// VerificationResult is produced once per input address and never mutated afterwards.
type VerificationResult struct {
	Email        string     `json:"email"`
	Result       Result     `json:"result"`
	SMTP         SMTPStatus `json:"smtp"`
	SMTPCode     int        `json:"smtpCode,omitempty"`
	SMTPResponse string     `json:"smtpResponse,omitempty"`
	Reason       string     `json:"reason"`
	MXHost       string     `json:"mxHost,omitempty"`
	IsRole       *bool      `json:"isRole,omitempty"`
}

// Counts aggregates results by verdict.
type Counts struct {
	Valid      int `json:"valid"`
	Invalid    int `json:"invalid"`
	Risky      int `json:"risky"`
	CatchAll   int `json:"catch_all"`
	Disposable int `json:"disposable"`
	Unknown    int `json:"unknown"`
}

// Add counts one result under its verdict.
func (c *Counts) Add(r Result) {
	switch r {
	case ResultValid:
		c.Valid++
	case ResultInvalid:
		c.Invalid++
	case ResultRisky:
		c.Risky++
	case ResultCatchAll:
		c.CatchAll++
	case ResultDisposable:
		c.Disposable++
	default:
		c.Unknown++
	}
}

// VerifyResponse is the 200 body of POST /verify.
type VerifyResponse struct {
	Success  bool                  `json:"success"`
	Results  []*VerificationResult `json:"results"`
	Counts   Counts                `json:"counts"`
	Verified int                   `json:"verified"`
}
