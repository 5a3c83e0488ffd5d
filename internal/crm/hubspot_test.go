package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *recorder) all() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recorded(nil), r.calls...)
}

func newHubSpot(t *testing.T, existing string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.calls = append(rec.calls, recorded{method: r.Method, path: r.URL.Path, body: body})
		rec.mu.Unlock()
		assert.Equal(t, "Bearer hs-key", r.Header.Get("Authorization"))

		switch {
		case r.URL.Path == "/crm/v3/objects/contacts/search":
			if existing == "" {
				w.Write([]byte(`{"results":[]}`))
				return
			}
			w.Write([]byte(`{"results":[{"id":"` + existing + `"}]}`))
		case r.URL.Path == "/crm/v3/objects/contacts" && r.Method == http.MethodPost:
			w.Write([]byte(`{"id":"new-contact"}`))
		case r.Method == http.MethodPatch:
			w.Write([]byte(`{"id":"` + existing + `"}`))
		case r.URL.Path == "/crm/v3/objects/deals":
			w.Write([]byte(`{"id":"deal-1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.Client(), "hs-key", ts.URL), rec
}

func TestUpsertContactCreates(t *testing.T) {
	c, rec := newHubSpot(t, "")
	id, err := c.UpsertContact(context.Background(), Contact{Email: "jane@example.com", FirstName: "Jane", LeadSource: "website"})
	require.NoError(t, err)
	assert.Equal(t, "new-contact", id)
	calls := rec.all()
	require.Len(t, calls, 2)
	props := calls[1].body["properties"].(map[string]any)
	assert.Equal(t, "jane@example.com", props["email"])
	assert.Equal(t, "website", props["lead_source"])
	_, hasPhone := props["phone"]
	assert.False(t, hasPhone)
}

func TestUpsertContactPatchesExisting(t *testing.T) {
	c, rec := newHubSpot(t, "42")
	id, err := c.UpsertContact(context.Background(), Contact{Email: "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
	calls := rec.all()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPatch, calls[1].method)
	assert.Equal(t, "/crm/v3/objects/contacts/42", calls[1].path)
}

func TestCreateDealAssociatesContact(t *testing.T) {
	c, rec := newHubSpot(t, "")
	id, err := c.CreateDeal(context.Background(), Deal{Name: "Gutter Cleaning - Seattle", Stage: "lead"}, "7")
	require.NoError(t, err)
	assert.Equal(t, "deal-1", id)

	calls := rec.all()
	require.Len(t, calls, 1)
	assoc := calls[0].body["associations"].([]any)[0].(map[string]any)
	assert.Equal(t, "7", assoc["to"].(map[string]any)["id"])
	typ := assoc["types"].([]any)[0].(map[string]any)
	assert.Equal(t, "HUBSPOT_DEFINED", typ["associationCategory"])
	assert.EqualValues(t, 3, typ["associationTypeId"])
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Property values were not valid"}`))
	}))
	defer ts.Close()

	err := NewClient(ts.Client(), "hs-key", ts.URL).UpdateDeal(context.Background(), "1", map[string]string{"amount": "10"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(nil, "", "")
	_, err := c.UpsertContact(context.Background(), Contact{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Mary Ann  Smith")
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Ann Smith", last)
	first, last = SplitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}
