package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vadim-su/homedns/internal/store"
	"github.com/vadim-su/homedns/pkg/dns/message"
	"github.com/vadim-su/homedns/pkg/dns/records"
	"github.com/vadim-su/homedns/pkg/dns/types"
	"github.com/vadim-su/homedns/pkg/dns/utils"
)

// SOADefaults carries the timer values synthesized into an SOA answer
// when the store holds no explicit SOA record for a domain this server
// is authoritative for. Serial is deliberately 0 — see DESIGN.md.
type SOADefaults struct {
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// DefaultSOADefaults matches the values a freshly bootstrapped zone is
// given.
func DefaultSOADefaults() SOADefaults {
	return SOADefaults{Serial: 0, Refresh: 46800, Retry: 6200, Expire: 3000000, Minimum: 300}
}

// AuthoritativeConfig configures an AuthoritativeResolver.
type AuthoritativeConfig struct {
	SOADomains      []string
	NameServers     []string
	DefaultTTL      uint32
	SOA             SOADefaults
	StoreRetries    int
	StoreRetryDelay time.Duration
}

func (c AuthoritativeConfig) withDefaults() AuthoritativeConfig {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = 600
	}
	if c.StoreRetries == 0 {
		c.StoreRetries = 5
	}
	if c.StoreRetryDelay == 0 {
		c.StoreRetryDelay = time.Second
	}
	if (c.SOA == SOADefaults{}) {
		c.SOA = DefaultSOADefaults()
	}
	return c
}

// AuthoritativeResolver answers queries for names under the server's
// configured SOA domains directly from the record store, without
// consulting any other resolver. It never returns a partial answer: it
// either fully answers the query or fails with one of the sentinel
// errors in errors.go, which the chain uses to decide whether to try
// the next resolver.
type AuthoritativeResolver struct {
	store  store.Store
	config AuthoritativeConfig
}

// NewAuthoritativeResolver creates an AuthoritativeResolver backed by s.
func NewAuthoritativeResolver(s store.Store, config AuthoritativeConfig) *AuthoritativeResolver {
	return &AuthoritativeResolver{store: s, config: config.withDefaults()}
}

// MatchesDomain reports whether name falls under one of this
// resolver's configured SOA domains.
func (r *AuthoritativeResolver) MatchesDomain(name string) bool {
	return r.matchSOADomain(name) != ""
}

// matchSOADomain returns the longest configured SOA domain that name
// falls under, or "" if none matches.
func (r *AuthoritativeResolver) matchSOADomain(name string) string {
	name = strings.ToLower(strings.TrimSuffix(name, "."))

	best := ""
	for _, domain := range r.config.SOADomains {
		domain = strings.ToLower(strings.TrimSuffix(domain, "."))
		if name == domain || strings.HasSuffix(name, "."+domain) {
			if len(domain) > len(best) {
				best = domain
			}
		}
	}

	return best
}

// knownKind reports whether qtype is a kind this store can hold.
func knownKind(qtype types.DNSType) bool {
	switch qtype {
	case types.TYPE_A, types.TYPE_AAAA, types.TYPE_CNAME, types.TYPE_MX, types.TYPE_NS, types.TYPE_SOA:
		return true
	default:
		return false
	}
}

// Resolve implements the authoritative decision procedure: lowercase
// the name, match it against a configured SOA domain, reject unknown
// query types, synthesize SOA/NS answers when the store has none, and
// otherwise search the store — retrying on transient unavailability
// before giving up.
func (r *AuthoritativeResolver) Resolve(ctx context.Context, question message.DNSQuestion) ([]message.DNSAnswer, error) {
	name := strings.ToLower(question.Name.String())
	qtype := question.RecordType()

	domain := r.matchSOADomain(name)
	if domain == "" {
		return nil, ErrNotAuthoritative
	}

	if !knownKind(qtype) {
		return nil, ErrNotImplemented
	}

	switch qtype {
	case types.TYPE_SOA:
		return r.resolveSOA(ctx, domain)
	case types.TYPE_NS:
		return r.resolveNS(ctx, domain)
	}

	// The store itself chases a CNAME one level for TYPE_A queries,
	// returning [CNAME, targetA...] — querying TYPE_CNAME separately
	// here would append that same CNAME record a second time.
	recs, err := r.searchWithRetry(ctx, name, qtype)
	if err != nil {
		return nil, err
	}

	var found []message.DNSAnswer
	for _, rec := range recs {
		answer, err := r.recordToAnswer(rec)
		if err != nil {
			continue
		}
		found = append(found, answer)
	}

	if len(found) == 0 {
		return nil, ErrAuthoritativeNoData
	}

	return found, nil
}

// ResolveAll resolves every question independently and concatenates the
// answers.
func (r *AuthoritativeResolver) ResolveAll(ctx context.Context, questions []message.DNSQuestion) ([]message.DNSAnswer, error) {
	var all []message.DNSAnswer
	for _, q := range questions {
		answers, err := r.Resolve(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, answers...)
	}
	return all, nil
}

// Close is a no-op; the resolver does not own the store's lifecycle.
func (r *AuthoritativeResolver) Close() error {
	return nil
}

// resolveSOA returns the stored SOA record for domain, synthesizing one
// from configured defaults if the store holds none.
func (r *AuthoritativeResolver) resolveSOA(ctx context.Context, domain string) ([]message.DNSAnswer, error) {
	recs, err := r.searchWithRetry(ctx, domain, types.TYPE_SOA)
	if err != nil {
		return nil, err
	}

	if len(recs) > 0 {
		answer, err := r.recordToAnswer(recs[0])
		if err != nil {
			return nil, ErrAuthoritativeNoData
		}
		return []message.DNSAnswer{answer}, nil
	}

	answer, err := r.recordToAnswer(r.synthesizedSOA(domain))
	if err != nil {
		return nil, ErrAuthoritativeNoData
	}
	return []message.DNSAnswer{answer}, nil
}

// resolveNS returns the stored NS records for domain, synthesizing them
// from the configured name server list if the store holds none.
func (r *AuthoritativeResolver) resolveNS(ctx context.Context, domain string) ([]message.DNSAnswer, error) {
	recs, err := r.searchWithRetry(ctx, domain, types.TYPE_NS)
	if err != nil {
		return nil, err
	}

	var answers []message.DNSAnswer
	for _, rec := range recs {
		answer, err := r.recordToAnswer(rec)
		if err != nil {
			continue
		}
		answers = append(answers, answer)
	}
	if len(answers) > 0 {
		return answers, nil
	}

	for _, ns := range r.config.NameServers {
		answer, err := r.recordToAnswer(records.NewNSRecord(domain, ns, r.config.DefaultTTL))
		if err != nil {
			continue
		}
		answers = append(answers, answer)
	}

	if len(answers) == 0 {
		return nil, ErrAuthoritativeNoData
	}
	return answers, nil
}

// searchWithRetry calls the store's NameSearch, retrying on
// store.ErrUnavailable up to config.StoreRetries times before giving up
// with ErrAuthoritativeFailure.
func (r *AuthoritativeResolver) searchWithRetry(ctx context.Context, name string, kind types.DNSType) ([]records.DNSRecord, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.StoreRetries; attempt++ {
		recs, err := r.store.NameSearch(ctx, name, kind)
		if err == nil {
			return recs, nil
		}
		if !errors.Is(err, store.ErrUnavailable) {
			return nil, ErrAuthoritativeFailure
		}
		lastErr = err

		if attempt == r.config.StoreRetries {
			break
		}

		select {
		case <-time.After(r.config.StoreRetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, errors.Join(ErrAuthoritativeFailure, lastErr)
}

// recordToAnswer converts a stored record into wire-ready answer form.
func (r *AuthoritativeResolver) recordToAnswer(rec records.DNSRecord) (message.DNSAnswer, error) {
	ttl := rec.TTL()
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}

	answer, err := message.NewDNSAnswer(utils.EncodeName(rec.Name()), rec.Class(), rec.Type(), ttl, rec.Data())
	if err != nil {
		return message.DNSAnswer{}, err
	}
	return *answer, nil
}

// synthesizedSOA builds the SOA record a zone is given when it has none
// of its own in the store.
func (r *AuthoritativeResolver) synthesizedSOA(domain string) records.DNSRecord {
	primaryNS := domain + "."
	if len(r.config.NameServers) > 0 {
		primaryNS = r.config.NameServers[0]
	}

	soa := r.config.SOA
	return records.NewSOARecord(
		domain, primaryNS, "admin."+domain+".",
		soa.Serial,
		time.Duration(soa.Refresh)*time.Second,
		time.Duration(soa.Retry)*time.Second,
		time.Duration(soa.Expire)*time.Second,
		time.Duration(soa.Minimum)*time.Second,
		r.config.DefaultTTL,
	)
}

var _ Resolver = (*AuthoritativeResolver)(nil)
