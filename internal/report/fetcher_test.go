package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>report</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, nil)
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, doc.URL)
	assert.Equal(t, "<html><body>report</body></html>", doc.HTML)
}

func TestFetcher_Fetch_FollowsRedirects(t *testing.T) {
	var mux http.ServeMux
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/runs/42/report.html", http.StatusFound)
	})
	mux.HandleFunc("/runs/42/report.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("final"))
	})

	f := NewFetcher(5*time.Second, nil)
	doc, err := f.Fetch(context.Background(), srv.URL+"/latest")
	require.NoError(t, err)
	assert.Equal(t, "final", doc.HTML)
}

func TestFetcher_Fetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, srv.URL, statusErr.URL)
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	f := NewFetcher(2*time.Second, nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, srv.URL, transportErr.URL)
}

func TestFetcher_Fetch_SelfSignedTLS(t *testing.T) {
	// httptest's TLS server presents a self-signed certificate, exactly the
	// shape of the internal CI hosts the fetcher is built for.
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tls report"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, nil)
	doc, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "tls report", doc.HTML)
}

func TestFetcher_Fetch_AppliesAuthenticator(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, &TokenAuthenticator{Token: "s3cret"})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer s3cret", gotAuth)
}

type failingAuth struct{}

func (failingAuth) Apply(*http.Request) error { return errors.New("no ticket") }

func TestFetcher_Fetch_AuthenticatorFailure(t *testing.T) {
	f := NewFetcher(5*time.Second, failingAuth{})
	_, err := f.Fetch(context.Background(), "http://example.invalid/report.html")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "applying credentials")
}

func TestFetcher_Fetch_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := NewFetcher(5*time.Second, nil)
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}
