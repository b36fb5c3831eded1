package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jaekwon721/nikewatcher/helpers"
	apperrors "jaekwon721/nikewatcher/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func landingPage(meta string) string {
	return `<html><head>` + meta + `</head><body></body></html>`
}

func TestResolveConceptID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(landingPage(
			`<meta name="branch:deeplink:$deeplink_path" content="x-callback-url/product-wall?conceptid=a1b2c3&foo=bar" />`)))
	}))
	defer server.Close()

	id, err := ResolveConceptID(context.Background(), helpers.NewSession(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", id)
}

func TestResolveConceptIDMissingMetaTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(landingPage(`<meta name="description" content="shoes" />`)))
	}))
	defer server.Close()

	id, err := ResolveConceptID(context.Background(), helpers.NewSession(), server.URL)
	require.Error(t, err)
	assert.Empty(t, id)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
	assert.Contains(t, err.Error(), "deeplink meta tag missing")
}

func TestResolveConceptIDMissingParameter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(landingPage(
			`<meta name="branch:deeplink:$deeplink_path" content="x-callback-url/product-wall?foo=bar" />`)))
	}))
	defer server.Close()

	id, err := ResolveConceptID(context.Background(), helpers.NewSession(), server.URL)
	require.Error(t, err)
	assert.Empty(t, id)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeParsing))
	assert.Contains(t, err.Error(), "conceptid missing")
}

func TestResolveConceptIDTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := ResolveConceptID(context.Background(), helpers.NewSession(), server.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTransport))
}
