package dnscheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dohServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestLookupTXTMatchingRecord(t *testing.T) {
	server := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/dns-json", r.Header.Get("Accept"))
		assert.Equal(t, "_domainverify.example.com", r.URL.Query().Get("name"))
		assert.Equal(t, "TXT", r.URL.Query().Get("type"))
		w.Write([]byte(`{"Status":0,"Answer":[{"name":"_domainverify.example.com.","type":16,"data":"\"abc123\""}]}`))
	})

	client := NewClient([]Resolver{{Name: "Test", URL: server.URL}}, time.Second)
	results := client.LookupTXT(context.Background(), "_domainverify.example.com")

	assert.Len(t, results, 1)
	assert.False(t, results[0].Failed())
	assert.Equal(t, []string{"abc123"}, results[0].Records)
	assert.True(t, AnyMatch(results, "abc123"))
}

func TestLookupTXTNXDomain(t *testing.T) {
	server := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":3}`))
	})

	client := NewClient([]Resolver{{Name: "Test", URL: server.URL}}, time.Second)
	results := client.LookupTXT(context.Background(), "_domainverify.example.com")

	assert.Len(t, results, 1)
	assert.False(t, results[0].Failed())
	assert.Empty(t, results[0].Records)
	assert.Equal(t, 3, results[0].Status)
	assert.False(t, AnyMatch(results, "abc123"))
}

func TestLookupTXTIgnoresNonTXTAnswers(t *testing.T) {
	server := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":0,"Answer":[{"name":"example.com.","type":1,"data":"93.184.216.34"},{"name":"example.com.","type":16,"data":"\"token\""}]}`))
	})

	client := NewClient([]Resolver{{Name: "Test", URL: server.URL}}, time.Second)
	results := client.LookupTXT(context.Background(), "example.com")

	assert.Equal(t, []string{"token"}, results[0].Records)
}

func TestLookupTXTResolverError(t *testing.T) {
	server := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := NewClient([]Resolver{{Name: "Broken", URL: server.URL}}, time.Second)
	results := client.LookupTXT(context.Background(), "example.com")

	assert.Len(t, results, 1)
	assert.True(t, results[0].Failed())
	assert.Contains(t, results[0].Err, "500")
}

func TestLookupTXTQueriesEveryResolver(t *testing.T) {
	good := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":0,"Answer":[{"name":"example.com.","type":16,"data":"\"abc\""}]}`))
	})
	bad := dohServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := NewClient([]Resolver{
		{Name: "Good", URL: good.URL},
		{Name: "Bad", URL: bad.URL},
	}, time.Second)
	results := client.LookupTXT(context.Background(), "example.com")

	assert.Len(t, results, 2)
	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	// One agreeing resolver is enough.
	assert.True(t, AnyMatch(results, "abc"))
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, 0)
	assert.Equal(t, DefaultResolvers, client.resolvers)
}
