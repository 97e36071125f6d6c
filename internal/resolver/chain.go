package resolver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/vadim-su/homedns/pkg/dns/message"
)

// ChainResolver implements the chain-of-responsibility pattern: the
// authoritative resolver always runs first, and the chain only falls
// through to the next resolver when a stage reports
// ErrNotAuthoritative. Every other error (ErrAuthoritativeNoData,
// ErrAuthoritativeFailure, ErrNotImplemented, a forwarder timeout) is
// terminal — an authoritative "no" is a real answer, not a cue to keep
// looking.
type ChainResolver struct {
	resolvers []ResolverWithPolicy
	config    *ResolverConfig
	verbose   bool
}

// ResolverWithPolicy wraps a resolver with additional policy information
type ResolverWithPolicy struct {
	Resolver Resolver
	Name     string
	Timeout  time.Duration
}

// NewChainResolver creates a new chain resolver with multiple resolvers.
// Resolvers are tried in the order given; only ErrNotAuthoritative
// passes control to the next one.
func NewChainResolver(config *ResolverConfig, resolvers ...Resolver) (*ChainResolver, error) {
	if len(resolvers) == 0 {
		return nil, fmt.Errorf("at least one resolver is required")
	}

	if config == nil {
		config = DefaultResolverConfig()
	}

	wrapped := make([]ResolverWithPolicy, len(resolvers))
	for i, resolver := range resolvers {
		wrapped[i] = ResolverWithPolicy{
			Resolver: resolver,
			Name:     fmt.Sprintf("resolver-%d", i),
			Timeout:  config.Timeout,
		}
	}

	return &ChainResolver{resolvers: wrapped, config: config}, nil
}

// NewChainResolverWithPolicies creates a chain resolver with named,
// individually timed stages.
func NewChainResolverWithPolicies(config *ResolverConfig, resolvers []ResolverWithPolicy) (*ChainResolver, error) {
	if len(resolvers) == 0 {
		return nil, fmt.Errorf("at least one resolver is required")
	}

	if config == nil {
		config = DefaultResolverConfig()
	}

	return &ChainResolver{resolvers: resolvers, config: config}, nil
}

// SetVerbose toggles per-stage attempt logging.
func (r *ChainResolver) SetVerbose(verbose bool) {
	r.verbose = verbose
}

// Resolve tries each resolver in order. A stage that returns
// ErrNotAuthoritative is skipped in favor of the next stage; any other
// error or a successful answer ends the fold immediately.
func (r *ChainResolver) Resolve(ctx context.Context, question message.DNSQuestion) ([]message.DNSAnswer, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var lastErr error

	for i, stage := range r.resolvers {
		stageCtx := ctx
		if stage.Timeout > 0 {
			var cancel context.CancelFunc
			stageCtx, cancel = context.WithTimeout(ctx, stage.Timeout)
			defer cancel()
		}

		if r.verbose {
			log.Printf("[chain] trying %s (%d/%d)", stage.Name, i+1, len(r.resolvers))
		}

		answers, err := stage.Resolver.Resolve(stageCtx, question)
		if err == nil {
			return answers, nil
		}

		lastErr = err

		if errors.Is(err, ErrNotAuthoritative) {
			if r.verbose {
				log.Printf("[chain] %s not authoritative, trying next stage", stage.Name)
			}
			continue
		}

		if r.verbose {
			log.Printf("[chain] %s terminal error: %v", stage.Name, err)
		}
		return nil, err
	}

	return nil, fmt.Errorf("no resolver in chain could answer: %w", lastErr)
}

// ResolveAll resolves each question independently and concatenates the
// successful results, skipping questions that fail.
func (r *ChainResolver) ResolveAll(ctx context.Context, questions []message.DNSQuestion) ([]message.DNSAnswer, error) {
	var allAnswers []message.DNSAnswer

	for _, question := range questions {
		answers, err := r.Resolve(ctx, question)
		if err != nil {
			if r.verbose {
				log.Printf("[chain] failed to resolve question %v: %v", question, err)
			}
			continue
		}
		allAnswers = append(allAnswers, answers...)
	}

	return allAnswers, nil
}

// Close closes every resolver in the chain.
func (r *ChainResolver) Close() error {
	var errs []error

	for _, stage := range r.resolvers {
		if err := stage.Resolver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", stage.Name, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// AddResolver appends a resolver to the end of the chain.
func (r *ChainResolver) AddResolver(resolver Resolver, name string) {
	r.resolvers = append(r.resolvers, ResolverWithPolicy{
		Resolver: resolver,
		Name:     name,
		Timeout:  r.config.Timeout,
	})
}

// RemoveResolver removes a resolver from the chain by name.
func (r *ChainResolver) RemoveResolver(name string) bool {
	for i, stage := range r.resolvers {
		if stage.Name == name {
			r.resolvers = append(r.resolvers[:i], r.resolvers[i+1:]...)
			return true
		}
	}
	return false
}

// GetResolverCount returns the number of resolvers in the chain.
func (r *ChainResolver) GetResolverCount() int {
	return len(r.resolvers)
}

// ChainOptions configures CreateHomeDNSChain.
type ChainOptions struct {
	Authoritative    *AuthoritativeResolver
	CacheEnabled     bool
	CacheTTL         time.Duration
	ForwardingServers []string
	ForwardTimeouts  []time.Duration
}

// CreateHomeDNSChain builds the chain: authoritative first, then
// (optionally) a cache-wrapped forwarder. The teacher's RecursiveResolver
// is deliberately left out of this construction — see DESIGN.md.
func CreateHomeDNSChain(opts ChainOptions) (*ChainResolver, error) {
	if opts.Authoritative == nil {
		return nil, fmt.Errorf("authoritative resolver is required")
	}

	stages := []ResolverWithPolicy{
		{Resolver: opts.Authoritative, Name: "authoritative"},
	}

	if len(opts.ForwardingServers) > 0 {
		config := DefaultResolverConfig()
		config.ForwardServers = opts.ForwardingServers
		config.CacheEnabled = opts.CacheEnabled
		if opts.CacheTTL > 0 {
			config.CacheTTL = opts.CacheTTL
		}
		if len(opts.ForwardTimeouts) > 0 {
			config.ForwardTimeouts = opts.ForwardTimeouts
		}

		forward, err := NewForwardResolver(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create forward resolver: %w", err)
		}

		var forwardStage Resolver = forward
		if opts.CacheEnabled {
			forwardStage = NewCacheResolver(config, forward)
		}

		stages = append(stages, ResolverWithPolicy{Resolver: forwardStage, Name: "forward"})
	}

	return NewChainResolverWithPolicies(DefaultResolverConfig(), stages)
}
