package utils

import (
	_ "embed"
	"strings"
)

//go:embed data/disposable_domains.txt
var disposableDomainList string

type domainSet map[string]struct{}

func newDomainSet(items ...string) domainSet {
	s := make(domainSet, len(items))
	for _, item := range items {
		s[strings.ToLower(item)] = struct{}{}
	}
	return s
}

func (s domainSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

func loadDomainList(list string) domainSet {
	var items []string
	for _, d := range strings.Split(list, "\n") {
		d = strings.TrimSpace(d)
		if d != "" && !strings.HasPrefix(d, "#") {
			items = append(items, d)
		}
	}
	return newDomainSet(items...)
}

// ReferenceSets are the static lookup tables the classifier consults. They are
// built once at startup and never modified.
type ReferenceSets struct {
	Disposable    domainSet
	SMTPBlocking  domainSet
	KnownCatchAll domainSet
	RoleAccounts  domainSet
}

func DefaultReferenceSets() ReferenceSets {
	return ReferenceSets{
		Disposable: loadDomainList(disposableDomainList),

		// Major mailbox providers reject or tarpit RCPT probes, so a live
		// answer from them says nothing about the mailbox.
		SMTPBlocking: newDomainSet(
			"gmail.com", "googlemail.com",
			"yahoo.com", "yahoo.co.uk", "yahoo.fr", "yahoo.de",
			"outlook.com", "hotmail.com", "hotmail.co.uk", "live.com", "msn.com",
			"icloud.com", "me.com", "mac.com",
			"aol.com", "protonmail.com", "proton.me",
			"gmx.com", "gmx.de", "mail.com",
			"yandex.com", "yandex.ru", "zoho.com", "comcast.net",
		),

		KnownCatchAll: newDomainSet(
			"ymail.com", "rocketmail.com",
			"att.net", "sbcglobal.net", "bellsouth.net",
			"verizon.net", "frontier.com",
		),

		RoleAccounts: newDomainSet(
			"admin", "administrator", "info", "support", "sales", "contact",
			"help", "office", "billing", "accounts", "noreply", "no-reply",
			"postmaster", "webmaster", "hostmaster", "abuse", "hello", "team",
			"marketing", "hr", "jobs", "careers", "enquiries", "press", "security",
		),
	}
}
