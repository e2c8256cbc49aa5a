package utils

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

type MXRecord struct {
	Priority uint16 `json:"priority"`
	Exchange string `json:"exchange"`
}

// MXResult lists a domain's mail exchangers, lowest priority value first.
type MXResult struct {
	Exists  bool
	Records []MXRecord
}

// MXResolver never fails: any lookup error is reported as Exists=false.
type MXResolver interface {
	ResolveMX(ctx context.Context, domain string) MXResult
}

type mxLookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

type DNSResolver struct {
	lookup  mxLookupFunc
	timeout time.Duration
}

// NewDNSResolver queries server (host:port) directly when set, otherwise the system resolver.
func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	r := &DNSResolver{timeout: timeout}
	if server != "" {
		r.lookup = exchangeMX(server, timeout)
	} else {
		r.lookup = net.DefaultResolver.LookupMX
	}
	return r
}

func (r *DNSResolver) ResolveMX(ctx context.Context, domain string) MXResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	mxs, err := r.lookup(ctx, domain)
	if err != nil {
		return MXResult{Records: []MXRecord{}}
	}

	records := make([]MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		host := strings.TrimSuffix(mx.Host, ".")
		// A null MX (RFC 7505) or blank host means the domain takes no mail.
		if host == "" {
			continue
		}
		records = append(records, MXRecord{Priority: mx.Pref, Exchange: host})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Priority < records[j].Priority
	})

	return MXResult{Exists: len(records) > 0, Records: records}
}

func exchangeMX(server string, timeout time.Duration) mxLookupFunc {
	client := &dns.Client{Timeout: timeout}
	return func(ctx context.Context, domain string) ([]*net.MX, error) {
		m := new(dns.Msg)
		m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)

		in, _, err := client.ExchangeContext(ctx, m, server)
		if err != nil {
			return nil, err
		}
		if in.Rcode != dns.RcodeSuccess {
			return nil, fmt.Errorf("mx lookup for %s: %s", domain, dns.RcodeToString[in.Rcode])
		}

		var out []*net.MX
		for _, ans := range in.Answer {
			if rr, ok := ans.(*dns.MX); ok {
				out = append(out, &net.MX{Host: rr.Mx, Pref: rr.Preference})
			}
		}
		return out, nil
	}
}
