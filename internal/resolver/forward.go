package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/vadim-su/homedns/pkg/dns/message"
	"github.com/vadim-su/homedns/pkg/dns/types"
)

// Resolve performs DNS resolution for the given question by forwarding to configured servers
func (r *ForwardResolver) Resolve(ctx context.Context, question message.DNSQuestion) ([]message.DNSAnswer, error) {
	var lastErr error

	// Try each forward server
	for _, server := range r.servers {
		answers, err := r.resolveWithServer(ctx, question, server)
		if err == nil {
			return answers, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("all forward servers failed, last error: %w", lastErr)
}

// ResolveAll performs DNS resolution for multiple questions
func (r *ForwardResolver) ResolveAll(ctx context.Context, questions []message.DNSQuestion) ([]message.DNSAnswer, error) {
	var allAnswers []message.DNSAnswer

	for _, question := range questions {
		answers, err := r.Resolve(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve question %v: %w", question, err)
		}
		allAnswers = append(allAnswers, answers...)
	}

	return allAnswers, nil
}

// Close closes the resolver and cleans up resources
func (r *ForwardResolver) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// resolveWithServer attempts to resolve a question with a specific
// server, stepping through the configured per-attempt timeout schedule
// (1s, 3s, 11s, 30s by default) until one attempt succeeds or the
// schedule is exhausted.
func (r *ForwardResolver) resolveWithServer(ctx context.Context, question message.DNSQuestion, server string) ([]message.DNSAnswer, error) {
	query := message.GenerateDNSQuery(0, []message.DNSQuestion{question})

	timeouts := r.config.ForwardTimeouts
	if len(timeouts) == 0 {
		timeouts = DefaultForwardTimeouts
	}

	var response *message.DNSResponse
	var err error

	for attempt, timeout := range timeouts {
		response, err = r.sendQuery(ctx, query, server, timeout)
		if err == nil {
			break
		}

		if attempt == len(timeouts)-1 {
			return nil, fmt.Errorf("query failed after %d attempts: %w", len(timeouts), err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	rcode := response.Header.Flags.RCode()
	if rcode != types.RCODE_NO_ERROR {
		return nil, NewResolutionError(rcode, "server returned error", nil)
	}

	return response.Answers, nil
}

// sendQuery sends a DNS query to a server and returns the response,
// bounded by timeout (or the context deadline, whichever is sooner).
func (r *ForwardResolver) sendQuery(ctx context.Context, query *message.DNSResponse, server string, timeout time.Duration) (*message.DNSResponse, error) {
	// Resolve server address
	serverAddr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve server address %s: %w", server, err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	err = r.client.SetWriteDeadline(deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to set write deadline: %w", err)
	}

	// Send query
	queryBytes := query.ToBytesWithCompression()
	_, err = r.client.WriteToUDP(queryBytes, serverAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to send query: %w", err)
	}

	// Set read deadline
	err = r.client.SetReadDeadline(deadline)
	if err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	// Receive response
	buffer := make([]byte, 4096)
	size, _, err := r.client.ReadFromUDP(buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to receive response: %w", err)
	}

	// Parse response
	response, err := message.NewDNSResponse(buffer[:size])
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return response, nil
}
