package resolver

import "errors"

// These sentinel errors classify why the authoritative resolver did
// not produce an answer. A chain stage uses errors.Is against
// ErrNotAuthoritative to decide whether to fall through to the next
// resolver in the chain; every other outcome is terminal.
var (
	// ErrNotAuthoritative means the queried name falls under no
	// configured SOA domain. The chain should try the next resolver.
	ErrNotAuthoritative = errors.New("not authoritative for name")

	// ErrAuthoritativeNoData means the name is within a configured SOA
	// domain, the query type is known, but the store holds nothing for
	// it and no SOA/NS synthesis applies. This is terminal — an
	// authoritative server answers NXDOMAIN/NODATA itself rather than
	// asking anyone else.
	ErrAuthoritativeNoData = errors.New("authoritative: no data")

	// ErrAuthoritativeFailure means the name is within a configured SOA
	// domain but the record store failed: it stayed unavailable through
	// every retry, or returned some other error (which is not retried).
	// Terminal: it would be wrong to claim NXDOMAIN for a name this
	// server is the authority for.
	ErrAuthoritativeFailure = errors.New("authoritative: store failure")

	// ErrNotImplemented means the query type is not one this server
	// understands or stores. Terminal.
	ErrNotImplemented = errors.New("query type not implemented")
)
