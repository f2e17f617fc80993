package verification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"domainmarket/marketplace-backend/pkg/dnscheck"
)

func dohServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func checkerWithResolver(t *testing.T, server *httptest.Server) *Checker {
	t.Helper()
	dns := dnscheck.NewClient([]dnscheck.Resolver{{Name: "Test", URL: server.URL}}, time.Second)
	return NewChecker(dns, time.Second)
}

func TestCheckDNSMatch(t *testing.T) {
	server := dohServer(t, `{"Status":0,"Answer":[{"name":"_domainverify.example.com.","type":16,"data":"\"abc123\""}]}`, http.StatusOK)
	checker := checkerWithResolver(t, server)

	result := checker.Check(context.Background(), MethodDNS, "example.com", Payload{
		DNS: &DNSPayload{RecordName: "_domainverify.example.com", RecordValue: "abc123"},
	})

	assert.True(t, result.Verified)
	assert.Contains(t, result.Message, "_domainverify.example.com")
	assert.Empty(t, result.LikelyCauses)
}

func TestCheckDNSNotPropagated(t *testing.T) {
	server := dohServer(t, `{"Status":3}`, http.StatusOK)
	checker := checkerWithResolver(t, server)

	result := checker.Check(context.Background(), MethodDNS, "example.com", Payload{
		DNS: &DNSPayload{RecordName: "_domainverify.example.com", RecordValue: "abc123"},
	})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "propagat")
	assert.NotEmpty(t, result.LikelyCauses)
	assert.NotEmpty(t, result.SuggestedRemedies)
}

func TestCheckDNSMismatchedValue(t *testing.T) {
	server := dohServer(t, `{"Status":0,"Answer":[{"name":"_domainverify.example.com.","type":16,"data":"\"stale-token\""}]}`, http.StatusOK)
	checker := checkerWithResolver(t, server)

	result := checker.Check(context.Background(), MethodDNS, "example.com", Payload{
		DNS: &DNSPayload{RecordName: "_domainverify.example.com", RecordValue: "abc123"},
	})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "does not match")
	// Mismatch is a configuration problem, not a propagation delay.
	assert.NotContains(t, result.LikelyCauses[0], "propagat")
}

func TestCheckDNSResolverOutage(t *testing.T) {
	server := dohServer(t, "", http.StatusBadGateway)
	checker := checkerWithResolver(t, server)

	result := checker.Check(context.Background(), MethodDNS, "example.com", Payload{
		DNS: &DNSPayload{RecordName: "_domainverify.example.com", RecordValue: "abc123"},
	})

	// A provider outage must not read like a wrong DNS record.
	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "does not mean your record is wrong")
	assert.Contains(t, result.Message, "again in a few minutes")
}

func TestCheckFileMatch(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("abc123\n"))
	}))
	defer fileServer.Close()

	checker := NewChecker(dnscheck.NewClient(nil, time.Second), time.Second)
	result := checker.Check(context.Background(), MethodFile, "example.com", Payload{
		File: &FilePayload{FileLocation: fileServer.URL + "/domainverify.txt", FileContent: "abc123"},
	})

	assert.True(t, result.Verified)
}

func TestCheckFileMissing(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer fileServer.Close()

	checker := NewChecker(dnscheck.NewClient(nil, time.Second), time.Second)
	result := checker.Check(context.Background(), MethodFile, "example.com", Payload{
		File: &FilePayload{FileLocation: fileServer.URL + "/domainverify.txt", FileContent: "abc123"},
	})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "No file was found")
}

func TestCheckFileWrongContent(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("old-token"))
	}))
	defer fileServer.Close()

	checker := NewChecker(dnscheck.NewClient(nil, time.Second), time.Second)
	result := checker.Check(context.Background(), MethodFile, "example.com", Payload{
		File: &FilePayload{FileLocation: fileServer.URL + "/domainverify.txt", FileContent: "abc123"},
	})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "does not match")
}

func TestCheckFileUnreachableIsTransient(t *testing.T) {
	fileServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	fileServer.Close() // connection refused

	checker := NewChecker(dnscheck.NewClient(nil, time.Second), time.Second)
	result := checker.Check(context.Background(), MethodFile, "example.com", Payload{
		File: &FilePayload{FileLocation: fileServer.URL + "/domainverify.txt", FileContent: "abc123"},
	})

	assert.False(t, result.Verified)
	assert.Contains(t, result.Message, "temporary network or provider problem")
}

func TestCheckEmail(t *testing.T) {
	checker := NewChecker(dnscheck.NewClient(nil, time.Second), time.Second)

	confirmed := checker.Check(context.Background(), MethodEmail, "example.com", Payload{
		Email: &EmailPayload{RecipientEmail: "admin@example.com", Token: "t", Confirmed: true},
	})
	assert.True(t, confirmed.Verified)

	unconfirmed := checker.Check(context.Background(), MethodEmail, "example.com", Payload{
		Email: &EmailPayload{RecipientEmail: "admin@example.com", Token: "t"},
	})
	assert.False(t, unconfirmed.Verified)
	assert.Contains(t, unconfirmed.Message, "has not been clicked")
}

func TestFindMetaTag(t *testing.T) {
	page := `<html><head>
<meta charset="utf-8">
<meta name="description" content="a marketplace domain">
<meta name="domain-verify" content="abc123">
</head><body></body></html>`

	content, found := findMetaTag(page, "domain-verify")
	assert.True(t, found)
	assert.Equal(t, "abc123", content)

	_, found = findMetaTag(page, "other-verify")
	assert.False(t, found)

	_, found = findMetaTag("not html at all", "domain-verify")
	assert.False(t, found)
}
