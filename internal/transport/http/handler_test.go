package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/identity/models"
	"registrar/internal/platform/middleware"
	"registrar/internal/platform/token"
	httptransport "registrar/internal/transport/http"
	"registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/secrets"
)

type stubService struct {
	submit func(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, attrs models.IdentityAttributes) (*models.LedgerEntry, error)
	get    func(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error)
}

func (s *stubService) Submit(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID, attrs models.IdentityAttributes) (*models.LedgerEntry, error) {
	return s.submit(ctx, callerID, requestID, attrs)
}

func (s *stubService) Get(ctx context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
	return s.get(ctx, callerID, requestID)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newServer(t *testing.T, svc *stubService) (*httptest.Server, string) {
	t.Helper()
	tokens := token.NewService("test-signing-key", "registrar", "callers")
	handler := httptransport.New(svc, discardLogger, tokens, nil)
	server := httptest.NewServer(httptransport.NewRouter(handler, nil))
	t.Cleanup(server.Close)

	bearer, err := tokens.Generate(domain.CallerID("apply-service"), time.Hour)
	require.NoError(t, err)
	return server, bearer
}

func doRequest(t *testing.T, method, url, bearer, body string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func completedEntry(requestID domain.RequestID) *models.LedgerEntry {
	candidateID := domain.CandidateID(uuid.New())
	return &models.LedgerEntry{
		CallerID:    "apply-service",
		RequestID:   requestID,
		CandidateID: &candidateID,
		TRN:         domain.TRN("1234567"),
		Status:      models.StatusCompleted,
		OptOutToken: "token-abc",
	}
}

const validBody = `{"firstName":"Ada","lastName":"Lovelace","dateOfBirth":"1990-02-03"}`

func TestSubmitEndpoint(t *testing.T) {
	t.Run("rejects missing bearer token", func(t *testing.T) {
		server, _ := newServer(t, &stubService{})
		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", "", validBody)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("completed resolution returns the identifier", func(t *testing.T) {
		svc := &stubService{
			submit: func(_ context.Context, callerID domain.CallerID, requestID domain.RequestID, attrs models.IdentityAttributes) (*models.LedgerEntry, error) {
				assert.Equal(t, domain.CallerID("apply-service"), callerID)
				assert.Equal(t, "Ada", attrs.FirstName)
				assert.Equal(t, time.Date(1990, 2, 3, 0, 0, 0, 0, time.UTC), attrs.DateOfBirth)
				return completedEntry(requestID), nil
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, validBody)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "req-1", body["requestId"])
		assert.Equal(t, "1234567", body["trn"])
		assert.Equal(t, "token-abc", body["optOutToken"])
		assert.NotEmpty(t, body["candidateId"])
	})

	t.Run("pending resolution returns 202", func(t *testing.T) {
		svc := &stubService{
			submit: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID, _ models.IdentityAttributes) (*models.LedgerEntry, error) {
				return &models.LedgerEntry{RequestID: requestID, Status: models.StatusPending}, nil
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, validBody)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "pending", body["status"])
		assert.Nil(t, body["trn"])
	})

	t.Run("withheld resolution returns 202 with withheld status", func(t *testing.T) {
		svc := &stubService{
			submit: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID, _ models.IdentityAttributes) (*models.LedgerEntry, error) {
				candidateID := domain.CandidateID(uuid.New())
				entry := &models.LedgerEntry{RequestID: requestID, Status: models.StatusPending, Withheld: true, CandidateID: &candidateID}
				return entry, dErrors.New(dErrors.CodeWithheld, "submission is held for human review")
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, validBody)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "withheld", body["status"])
		assert.Nil(t, body["candidateId"])
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		svc := &stubService{
			submit: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID, _ models.IdentityAttributes) (*models.LedgerEntry, error) {
				entry := &models.LedgerEntry{RequestID: requestID, Status: models.StatusPending, Withheld: true}
				return entry, dErrors.New(dErrors.CodeConflict, "submission matches multiple records and needs human resolution")
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, validBody)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "conflict", body["error"])
	})

	t.Run("validation failure maps to 400 with every reason", func(t *testing.T) {
		svc := &stubService{
			submit: func(context.Context, domain.CallerID, domain.RequestID, models.IdentityAttributes) (*models.LedgerEntry, error) {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "submitted attributes failed validation").
					WithDetails("last_name_missing", "date_of_birth_missing")
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, `{"firstName":"Ada"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_input", body["error"])
		assert.ElementsMatch(t, []any{"last_name_missing", "date_of_birth_missing"}, body["details"])
	})

	t.Run("malformed date of birth rejected before the service", func(t *testing.T) {
		server, bearer := newServer(t, &stubService{})
		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer,
			`{"firstName":"Ada","lastName":"Lovelace","dateOfBirth":"03/02/1990"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.ElementsMatch(t, []any{"date_of_birth_malformed"}, body["details"])
	})

	t.Run("malformed request id rejected", func(t *testing.T) {
		server, bearer := newServer(t, &stubService{})
		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/bad!id", bearer, validBody)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_input", body["error"])
	})

	t.Run("unavailable maps to 503 with retry hint", func(t *testing.T) {
		svc := &stubService{
			submit: func(context.Context, domain.CallerID, domain.RequestID, models.IdentityAttributes) (*models.LedgerEntry, error) {
				return nil, dErrors.New(dErrors.CodeUnavailable, "candidate search failed")
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodPut, server.URL+"/v1/trn-requests/req-1", bearer, validBody)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unavailable", body["error"])
		assert.Equal(t, "5", resp.Header.Get("Retry-After"))
	})
}

func TestGetEndpoint(t *testing.T) {
	t.Run("unknown request id maps to 404", func(t *testing.T) {
		svc := &stubService{
			get: func(context.Context, domain.CallerID, domain.RequestID) (*models.LedgerEntry, error) {
				return nil, dErrors.New(dErrors.CodeNotFound, "no submission for this request id")
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/trn-requests/ghost", bearer, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "not_found", body["error"])
	})

	t.Run("completed entry returns the identifier", func(t *testing.T) {
		svc := &stubService{
			get: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
				return completedEntry(requestID), nil
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/trn-requests/req-1", bearer, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "1234567", body["trn"])
	})

	t.Run("withheld conflict maps to 409", func(t *testing.T) {
		svc := &stubService{
			get: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
				return &models.LedgerEntry{RequestID: requestID, Status: models.StatusPending, Withheld: true}, nil
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/trn-requests/req-1", bearer, "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "conflict", body["error"])
	})

	t.Run("withheld duplicate stays a 202 poll", func(t *testing.T) {
		svc := &stubService{
			get: func(_ context.Context, _ domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
				candidateID := domain.CandidateID(uuid.New())
				return &models.LedgerEntry{RequestID: requestID, Status: models.StatusPending, Withheld: true, CandidateID: &candidateID}, nil
			},
		}
		server, bearer := newServer(t, svc)

		resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/trn-requests/req-1", bearer, "")
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		assert.Equal(t, "withheld", body["status"])
	})
}

func TestAPIKeyAuthentication(t *testing.T) {
	hash, err := secrets.Hash("shared-key")
	require.NoError(t, err)
	keys := middleware.APIKeys{"batch-loader": hash}

	newKeyedServer := func(t *testing.T, svc *stubService) *httptest.Server {
		t.Helper()
		tokens := token.NewService("test-signing-key", "registrar", "callers")
		handler := httptransport.New(svc, discardLogger, tokens, keys)
		server := httptest.NewServer(httptransport.NewRouter(handler, nil))
		t.Cleanup(server.Close)
		return server
	}

	doKeyed := func(t *testing.T, url, caller, key string) (*http.Response, map[string]any) {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		req.Header.Set("X-Caller-Id", caller)
		req.Header.Set("X-Api-Key", key)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })

		var decoded map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		return resp, decoded
	}

	t.Run("valid key resolves the caller", func(t *testing.T) {
		svc := &stubService{
			get: func(_ context.Context, callerID domain.CallerID, requestID domain.RequestID) (*models.LedgerEntry, error) {
				assert.Equal(t, domain.CallerID("batch-loader"), callerID)
				return completedEntry(requestID), nil
			},
		}
		server := newKeyedServer(t, svc)

		resp, body := doKeyed(t, server.URL+"/v1/trn-requests/req-1", "batch-loader", "shared-key")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "completed", body["status"])
	})

	t.Run("wrong key is rejected", func(t *testing.T) {
		server := newKeyedServer(t, &stubService{})
		resp, body := doKeyed(t, server.URL+"/v1/trn-requests/req-1", "batch-loader", "guessed-key")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("unknown caller is rejected", func(t *testing.T) {
		server := newKeyedServer(t, &stubService{})
		resp, _ := doKeyed(t, server.URL+"/v1/trn-requests/req-1", "ghost-caller", "shared-key")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("key pair without both headers is rejected", func(t *testing.T) {
		server := newKeyedServer(t, &stubService{})
		req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/trn-requests/req-1", nil)
		require.NoError(t, err)
		req.Header.Set("X-Caller-Id", "batch-loader")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHealthz(t *testing.T) {
	server, _ := newServer(t, &stubService{})
	resp, body := doRequest(t, http.MethodGet, server.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
