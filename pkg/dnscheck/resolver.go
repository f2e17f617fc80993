package dnscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Resolver is one DNS-over-HTTPS JSON endpoint (RFC 8484 JSON variant, as
// served by dns.google and cloudflare-dns.com).
type Resolver struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DefaultResolvers are queried when the config does not override them.
// Multiple resolvers are used on purpose: during propagation they routinely
// disagree, and the per-resolver results are surfaced to the user.
var DefaultResolvers = []Resolver{
	{Name: "Google", URL: "https://dns.google/resolve"},
	{Name: "Cloudflare", URL: "https://cloudflare-dns.com/dns-query"},
}

// ResolverResult is the outcome of one TXT lookup against one resolver.
type ResolverResult struct {
	Resolver string   `json:"resolver"`
	Records  []string `json:"records"`
	Status   int      `json:"status"` // DNS RCODE; 0 NOERROR, 3 NXDOMAIN
	Err      string   `json:"error,omitempty"`
}

// Failed reports whether the lookup itself failed (network/provider error),
// as opposed to completing with no or different records.
func (r ResolverResult) Failed() bool {
	return r.Err != ""
}

// Client queries public DoH resolvers for TXT records.
type Client struct {
	httpClient *http.Client
	resolvers  []Resolver
}

// NewClient creates a DoH client. A nil/empty resolver list falls back to
// DefaultResolvers.
func NewClient(resolvers []Resolver, timeout time.Duration) *Client {
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		resolvers:  resolvers,
	}
}

// dohResponse is the JSON body returned by the resolve endpoints.
type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Name string `json:"name"`
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// LookupTXT queries every configured resolver for TXT records at name and
// returns one result per resolver. It never returns an error: resolver
// failures are recorded in the corresponding result so callers can tell a
// provider outage apart from an empty answer.
func (c *Client) LookupTXT(ctx context.Context, name string) []ResolverResult {
	results := make([]ResolverResult, 0, len(c.resolvers))
	for _, resolver := range c.resolvers {
		results = append(results, c.lookupOne(ctx, resolver, name))
	}
	return results
}

func (c *Client) lookupOne(ctx context.Context, resolver Resolver, name string) ResolverResult {
	result := ResolverResult{Resolver: resolver.Name}

	reqURL := fmt.Sprintf("%s?name=%s&type=TXT", resolver.URL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Err = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Sprintf("resolver returned HTTP %d", resp.StatusCode)
		return result
	}

	var body dohResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		result.Err = fmt.Sprintf("invalid resolver response: %v", err)
		return result
	}

	result.Status = body.Status
	for _, answer := range body.Answer {
		// Type 16 = TXT. Records come back quoted.
		if answer.Type != 16 {
			continue
		}
		result.Records = append(result.Records, strings.Trim(answer.Data, `"`))
	}
	return result
}

// AnyMatch reports whether any resolver returned a TXT record equal to the
// expected value.
func AnyMatch(results []ResolverResult, expected string) bool {
	for _, res := range results {
		for _, record := range res.Records {
			if strings.TrimSpace(record) == expected {
				return true
			}
		}
	}
	return false
}
