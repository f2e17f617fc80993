package verification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"domainmarket/marketplace-backend/pkg/dnscheck"
)

// CheckResult is the advisory outcome of an ownership check. On failure the
// three optional sections (raw per-resolver results, likely causes,
// suggested remedies) are populated separately because the UI renders them
// as distinct blocks.
type CheckResult struct {
	Verified          bool                      `json:"verified"`
	Message           string                    `json:"message"`
	ResolverResults   []dnscheck.ResolverResult `json:"resolver_results,omitempty"`
	LikelyCauses      []string                  `json:"likely_causes,omitempty"`
	SuggestedRemedies []string                  `json:"suggested_remedies,omitempty"`
}

// Checker runs external ownership checks. It has no side effects: it never
// mutates a request or listing, and it never returns an error — provider
// failures come back as an unverified result with a retry-safe explanation.
type Checker struct {
	dns        *dnscheck.Client
	httpClient *http.Client
}

// NewChecker creates a checker. timeout bounds the file and HTML fetches.
func NewChecker(dns *dnscheck.Client, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Checker{
		dns:        dns,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Check verifies the external resource for one request. domainName is the
// listing's domain.
func (c *Checker) Check(ctx context.Context, method Method, domainName string, payload Payload) CheckResult {
	switch method {
	case MethodDNS:
		return c.checkDNS(ctx, payload.DNS)
	case MethodFile:
		return c.checkFile(ctx, payload.File)
	case MethodHTML:
		return c.checkHTML(ctx, domainName, payload.HTML)
	case MethodEmail:
		return checkEmail(payload.Email)
	default:
		return CheckResult{
			Verified: false,
			Message:  fmt.Sprintf("unsupported verification method %q", method),
		}
	}
}

func (c *Checker) checkDNS(ctx context.Context, payload *DNSPayload) CheckResult {
	results := c.dns.LookupTXT(ctx, payload.RecordName)

	if dnscheck.AnyMatch(results, payload.RecordValue) {
		return CheckResult{
			Verified:        true,
			Message:         fmt.Sprintf("TXT record at %s matches the expected value.", payload.RecordName),
			ResolverResults: results,
		}
	}

	var (
		anyRecords  bool
		anySucceeds bool
	)
	for _, res := range results {
		if !res.Failed() {
			anySucceeds = true
		}
		if len(res.Records) > 0 {
			anyRecords = true
		}
	}

	result := CheckResult{Verified: false, ResolverResults: results}
	switch {
	case !anySucceeds:
		// Every resolver errored: a provider problem, not a DNS mistake.
		result.LikelyCauses = []string{
			"The DNS lookup service could not be reached. This does not mean your record is wrong.",
		}
		result.SuggestedRemedies = []string{
			"Try the check again in a few minutes.",
		}
	case anyRecords:
		result.LikelyCauses = []string{
			fmt.Sprintf("A TXT record exists at %s but its value does not match the expected token.", payload.RecordName),
			"An old verification token may still be published.",
		}
		result.SuggestedRemedies = []string{
			fmt.Sprintf("Set the TXT record value to exactly: %s", payload.RecordValue),
			"Remove stale TXT records at the same name.",
		}
	default:
		result.LikelyCauses = []string{
			fmt.Sprintf("No TXT record was found at %s. The record may not have propagated yet.", payload.RecordName),
			"DNS propagation can take from a few minutes up to 48 hours.",
		}
		result.SuggestedRemedies = []string{
			fmt.Sprintf("Confirm a TXT record named %s with value %s exists at your DNS provider.", payload.RecordName, payload.RecordValue),
			"Wait for propagation and check again.",
		}
	}
	result.Message = buildFailureMessage(results, result.LikelyCauses, result.SuggestedRemedies)
	return result
}

func (c *Checker) checkFile(ctx context.Context, payload *FilePayload) CheckResult {
	body, status, err := c.fetch(ctx, payload.FileLocation)
	if err != nil {
		return transientResult(fmt.Sprintf("Could not fetch %s: the server did not respond.", payload.FileLocation))
	}

	result := CheckResult{Verified: false}
	switch {
	case status == http.StatusNotFound:
		result.LikelyCauses = []string{
			fmt.Sprintf("No file was found at %s.", payload.FileLocation),
		}
		result.SuggestedRemedies = []string{
			fmt.Sprintf("Upload a plain-text file at %s containing the verification token.", payload.FileLocation),
		}
	case status != http.StatusOK:
		result.LikelyCauses = []string{
			fmt.Sprintf("The server returned HTTP %d for %s.", status, payload.FileLocation),
		}
		result.SuggestedRemedies = []string{
			"Make sure the file is publicly readable without authentication.",
		}
	case strings.TrimSpace(body) == payload.FileContent:
		return CheckResult{
			Verified: true,
			Message:  fmt.Sprintf("Verification file at %s matches the expected content.", payload.FileLocation),
		}
	default:
		result.LikelyCauses = []string{
			"The file exists but its content does not match the verification token.",
		}
		result.SuggestedRemedies = []string{
			fmt.Sprintf("Replace the file content with exactly: %s", payload.FileContent),
		}
	}
	result.Message = buildFailureMessage(nil, result.LikelyCauses, result.SuggestedRemedies)
	return result
}

func (c *Checker) checkHTML(ctx context.Context, domainName string, payload *HTMLPayload) CheckResult {
	pageURL := "https://" + domainName + "/"
	body, status, err := c.fetch(ctx, pageURL)
	if err != nil {
		return transientResult(fmt.Sprintf("Could not fetch %s: the server did not respond.", pageURL))
	}
	if status != http.StatusOK {
		return CheckResult{
			Verified: false,
			Message: buildFailureMessage(nil,
				[]string{fmt.Sprintf("The server returned HTTP %d for %s.", status, pageURL)},
				[]string{"Make sure the domain's homepage is publicly reachable."}),
			LikelyCauses:      []string{fmt.Sprintf("The server returned HTTP %d for %s.", status, pageURL)},
			SuggestedRemedies: []string{"Make sure the domain's homepage is publicly reachable."},
		}
	}

	content, found := findMetaTag(body, payload.TagName)
	switch {
	case found && content == payload.TagContent:
		return CheckResult{
			Verified: true,
			Message:  fmt.Sprintf("Meta tag %q on %s matches the expected value.", payload.TagName, pageURL),
		}
	case found:
		causes := []string{fmt.Sprintf("A %q meta tag exists but its content does not match the expected token.", payload.TagName)}
		remedies := []string{fmt.Sprintf(`Set the tag to <meta name=%q content=%q>.`, payload.TagName, payload.TagContent)}
		return CheckResult{
			Verified:          false,
			Message:           buildFailureMessage(nil, causes, remedies),
			LikelyCauses:      causes,
			SuggestedRemedies: remedies,
		}
	default:
		causes := []string{fmt.Sprintf("No %q meta tag was found on %s.", payload.TagName, pageURL)}
		remedies := []string{fmt.Sprintf(`Add <meta name=%q content=%q> inside the page's <head>.`, payload.TagName, payload.TagContent)}
		return CheckResult{
			Verified:          false,
			Message:           buildFailureMessage(nil, causes, remedies),
			LikelyCauses:      causes,
			SuggestedRemedies: remedies,
		}
	}
}

func checkEmail(payload *EmailPayload) CheckResult {
	if payload.Confirmed {
		return CheckResult{
			Verified: true,
			Message:  fmt.Sprintf("Ownership was confirmed via %s.", payload.RecipientEmail),
		}
	}
	causes := []string{fmt.Sprintf("The confirmation link sent to %s has not been clicked yet.", payload.RecipientEmail)}
	remedies := []string{"Check the mailbox (including spam) and click the confirmation link."}
	return CheckResult{
		Verified:          false,
		Message:           buildFailureMessage(nil, causes, remedies),
		LikelyCauses:      causes,
		SuggestedRemedies: remedies,
	}
}

// fetch GETs a URL and returns up to 64KB of body.
func (c *Checker) fetch(ctx context.Context, rawURL string) (body string, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(data), resp.StatusCode, nil
}

// findMetaTag scans an HTML document for <meta name=tagName content=...>.
func findMetaTag(page, tagName string) (content string, found bool) {
	tokenizer := html.NewTokenizer(strings.NewReader(page))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return "", false
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "meta" {
				continue
			}
			var name, value string
			for _, attr := range token.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "content":
					value = attr.Val
				}
			}
			if name == tagName {
				return value, true
			}
		}
	}
}

func transientResult(cause string) CheckResult {
	causes := []string{cause, "This looks like a temporary network or provider problem."}
	remedies := []string{"Try the check again in a few minutes."}
	return CheckResult{
		Verified:          false,
		Message:           buildFailureMessage(nil, causes, remedies),
		LikelyCauses:      causes,
		SuggestedRemedies: remedies,
	}
}

// buildFailureMessage composes the user-facing explanation from the three
// optional sections.
func buildFailureMessage(resolverResults []dnscheck.ResolverResult, causes, remedies []string) string {
	var b strings.Builder
	b.WriteString("Verification did not succeed.")

	if len(resolverResults) > 0 {
		b.WriteString("\n\nResolver results:")
		for _, res := range resolverResults {
			switch {
			case res.Failed():
				fmt.Fprintf(&b, "\n- %s: error (%s)", res.Resolver, res.Err)
			case len(res.Records) == 0:
				fmt.Fprintf(&b, "\n- %s: no TXT records", res.Resolver)
			default:
				fmt.Fprintf(&b, "\n- %s: %s", res.Resolver, strings.Join(res.Records, ", "))
			}
		}
	}
	if len(causes) > 0 {
		b.WriteString("\n\nLikely causes:")
		for _, cause := range causes {
			fmt.Fprintf(&b, "\n- %s", cause)
		}
	}
	if len(remedies) > 0 {
		b.WriteString("\n\nSuggested remedies:")
		for _, remedy := range remedies {
			fmt.Fprintf(&b, "\n- %s", remedy)
		}
	}
	return b.String()
}
