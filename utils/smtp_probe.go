package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"verifyproxy/models"
)

// ProbeResult is the outcome of one SMTP handshake.
type ProbeResult struct {
	Status   models.SMTPStatus
	Code     int
	Response string
}

// Prober checks whether mxHost accepts a recipient. One call is one TCP connection.
type Prober interface {
	Probe(ctx context.Context, email, mxHost string) ProbeResult
}

type smtpState int

const (
	stateBanner smtpState = iota
	stateEHLO
	stateMailFrom
	stateRcptTo
	stateQuit
	stateDone
)

func (s smtpState) String() string {
	switch s {
	case stateBanner:
		return "banner"
	case stateEHLO:
		return "ehlo"
	case stateMailFrom:
		return "mailfrom"
	case stateRcptTo:
		return "rcptto"
	case stateQuit:
		return "quit"
	default:
		return "done"
	}
}

// transition is what the handshake does after a reply in a given state.
// A non-nil result moves the machine to stateQuit.
type transition struct {
	next   smtpState
	send   string
	result *ProbeResult
}

// SMTPProber runs banner, EHLO, MAIL FROM, RCPT TO and QUIT against port 25 of an exchanger.
type SMTPProber struct {
	HeloHost string
	Port     string
	Timeout  time.Duration
}

func NewSMTPProber(heloHost, port string, timeout time.Duration) *SMTPProber {
	if port == "" {
		port = "25"
	}
	return &SMTPProber{HeloHost: heloHost, Port: port, Timeout: timeout}
}

func (p *SMTPProber) step(state smtpState, code int, text, email string) transition {
	terminal := func(status models.SMTPStatus) transition {
		return transition{
			next:   stateQuit,
			send:   "QUIT",
			result: &ProbeResult{Status: status, Code: code, Response: text},
		}
	}

	switch state {
	case stateBanner:
		if code == 220 {
			return transition{next: stateEHLO, send: "EHLO " + p.HeloHost}
		}
		if code >= 500 {
			return terminal(models.SMTPFailed)
		}
		return terminal(models.SMTPBlocked)
	case stateEHLO:
		if code == 250 {
			return transition{next: stateMailFrom, send: fmt.Sprintf("MAIL FROM:<verify@%s>", p.HeloHost)}
		}
		return terminal(models.SMTPFailed)
	case stateMailFrom:
		if code == 250 {
			return transition{next: stateRcptTo, send: fmt.Sprintf("RCPT TO:<%s>", email)}
		}
		return terminal(models.SMTPFailed)
	case stateRcptTo:
		return terminal(ClassifyRcptCode(code))
	default:
		return transition{next: stateDone}
	}
}

// ClassifyRcptCode maps a RCPT TO reply code to a probe status.
// Codes outside the known sets are treated as greylisted.
func ClassifyRcptCode(code int) models.SMTPStatus {
	switch {
	case code == 250 || code == 251:
		return models.SMTPPassed
	case code >= 550 && code <= 559:
		return models.SMTPFailed
	case code >= 450 && code <= 459:
		return models.SMTPGreylisted
	case code == 421:
		return models.SMTPBlocked
	case code >= 500:
		return models.SMTPFailed
	default:
		return models.SMTPGreylisted
	}
}

func (p *SMTPProber) Probe(ctx context.Context, email, mxHost string) ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(mxHost, p.Port))
	if err != nil {
		return blockedResult("connect", err)
	}
	tp := textproto.NewConn(conn)
	defer tp.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	state := stateBanner
	for state != stateDone {
		code, text, err := readReply(&tp.Reader)
		if err != nil {
			return blockedResult(state.String(), err)
		}

		t := p.step(state, code, text, email)
		if t.send != "" {
			if err := tp.PrintfLine("%s", t.send); err != nil && t.result == nil {
				return blockedResult(state.String(), err)
			}
		}
		if t.result != nil {
			// QUIT is best effort; the verdict is already known.
			return *t.result
		}
		state = t.next
	}

	return ProbeResult{Status: models.SMTPBlocked, Response: "handshake ended without a verdict"}
}

// readReply reads one reply block and returns the code and text of its last line.
func readReply(r *textproto.Reader) (int, string, error) {
	var lines []string
	for {
		line, err := r.ReadLine()
		if err != nil {
			return 0, "", err
		}
		if len(line) >= 4 && line[3] == '-' {
			lines = append(lines, line[4:])
			continue
		}

		code := 0
		text := line
		if len(line) >= 3 {
			if n, err := strconv.Atoi(line[:3]); err == nil {
				code = n
				text = strings.TrimSpace(line[3:])
			}
		}
		lines = append(lines, text)
		return code, strings.Join(lines, "\n"), nil
	}
}

func blockedResult(stage string, err error) ProbeResult {
	msg := err.Error()
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		msg = "timeout"
	}
	return ProbeResult{
		Status:   models.SMTPBlocked,
		Response: fmt.Sprintf("%s: %s", stage, msg),
	}
}
