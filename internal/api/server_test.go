package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tumorboard-evidence-service/internal/domain"
)

// stubFetcher implements EvidenceFetcher with canned responses.
type stubFetcher struct {
	evidence *domain.Evidence
	variant  map[string]interface{}
	err      error
}

func (s *stubFetcher) FetchEvidence(ctx context.Context, gene, variant string) (*domain.Evidence, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.evidence, nil
}

func (s *stubFetcher) GetVariant(ctx context.Context, variantID string) (map[string]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.variant, nil
}

func newTestServer(fetcher EvidenceFetcher) *Server {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Logging: domain.LoggingConfig{Level: "error"},
	}

	return NewServer(cfg, fetcher, logger)
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleFetchEvidence(t *testing.T) {
	gene := "BRAF"
	protein := "NP_004324.2:p.V600E"
	fetcher := &stubFetcher{
		evidence: &domain.Evidence{
			VariantID:   "chr7:g.140453136A>T",
			Gene:        gene,
			Variant:     "V600E",
			HGVSProtein: &protein,
			CIViC:       []domain.CIViCEvidence{},
			ClinVar:     []domain.ClinVarEvidence{},
			COSMIC:      []domain.COSMICEvidence{},
		},
	}
	server := newTestServer(fetcher)

	body, err := json.Marshal(domain.VariantInput{Gene: "BRAF", Variant: "V600E"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Evidence
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "chr7:g.140453136A>T", got.VariantID)
	require.NotNil(t, got.HGVSProtein)
	assert.Equal(t, protein, *got.HGVSProtein)

	// Serialized evidence lists are arrays, never null.
	assert.Contains(t, rec.Body.String(), `"civic":[]`)
	assert.Contains(t, rec.Body.String(), `"clinvar":[]`)
	assert.Contains(t, rec.Body.String(), `"cosmic":[]`)
}

func TestHandleFetchEvidence_InvalidInput(t *testing.T) {
	server := newTestServer(&stubFetcher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", bytes.NewReader([]byte(`{"gene": "BRAF"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrInvalidInput)
}

func TestHandleFetchEvidence_UpstreamError(t *testing.T) {
	fetcher := &stubFetcher{err: domain.NewAPIError(domain.ErrUpstreamAPI, "upstream returned status 500")}
	server := newTestServer(fetcher)

	body := []byte(`{"gene": "BRAF", "variant": "V600E"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrUpstreamAPI)
}

func TestHandleGetVariant(t *testing.T) {
	fetcher := &stubFetcher{
		variant: map[string]interface{}{"_id": "chr7:g.140453136A>T", "entrezgene": float64(673)},
	}
	server := newTestServer(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variant/rs113488022", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chr7:g.140453136A>T")
}

func TestHandleGetVariant_UpstreamError(t *testing.T) {
	fetcher := &stubFetcher{err: domain.NewAPIError(domain.ErrTimeout, "request timed out after 30s")}
	server := newTestServer(fetcher)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/variant/rs113488022", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.ErrTimeout)
}

func TestRequestIDMiddleware_PreservesIncomingID(t *testing.T) {
	server := newTestServer(&stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
