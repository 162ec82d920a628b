package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"orgtasks/internal/adapters"
	"orgtasks/internal/app"
	"orgtasks/internal/types"
)

func parseFilters(pairs ...string) []types.FieldFilter {
	filters := make([]types.FieldFilter, 0, len(pairs))
	for _, pair := range pairs {
		field, value, _ := strings.Cut(pair, "=")
		filters = append(filters, types.FieldFilter{Field: field, Value: value})
	}
	return filters
}

// fakeOrg is an in-memory stand-in for the platform REST surface: user
// describe/query, content version create, content document delete and
// the profile photo connect endpoint.
type fakeOrg struct {
	mu          sync.Mutex
	documents   map[string]string // content version id -> content document id
	rejectPhoto bool
	deleteCalls int
	userIDs     []string
}

func (o *fakeOrg) handler(t *testing.T) http.Handler {
	const base = "/services/data/v60.0"
	mux := http.NewServeMux()

	mux.HandleFunc(base+"/sobjects/User/describe", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fields":[{"name":"Alias","soapType":"xsd:string","filterable":true}]}`))
	})

	mux.HandleFunc(base+"/query", func(w http.ResponseWriter, r *http.Request) {
		o.mu.Lock()
		defer o.mu.Unlock()
		soql := r.URL.Query().Get("q")
		if strings.Contains(soql, "FROM User") {
			rows := make([]string, 0, len(o.userIDs))
			for _, id := range o.userIDs {
				rows = append(rows, fmt.Sprintf(`{"Id":%q}`, id))
			}
			_, _ = fmt.Fprintf(w, `{"done":true,"records":[%s]}`, strings.Join(rows, ","))
			return
		}
		// ContentVersion lookup by its own id.
		for versionID, documentID := range o.documents {
			if strings.Contains(soql, versionID) {
				_, _ = fmt.Fprintf(w, `{"done":true,"records":[{"Id":%q,"ContentDocumentId":%q}]}`, versionID, documentID)
				return
			}
		}
		_, _ = w.Write([]byte(`{"done":true,"records":[]}`))
	})

	mux.HandleFunc(base+"/sobjects/ContentVersion", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		require.NotEmpty(t, fields["VersionData"])

		o.mu.Lock()
		versionID := fmt.Sprintf("068%015d", len(o.documents)+1)
		o.documents[versionID] = "069" + versionID[3:]
		o.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprintf(w, `{"id":%q,"success":true,"errors":[]}`, versionID)
	})

	mux.HandleFunc(base+"/sobjects/ContentDocument/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		documentID := strings.TrimPrefix(r.URL.Path, base+"/sobjects/ContentDocument/")

		o.mu.Lock()
		o.deleteCalls++
		for versionID, id := range o.documents {
			if id == documentID {
				delete(o.documents, versionID)
			}
		}
		o.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc(base+"/connect/user-profiles/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if o.rejectPhoto {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`[{"message":"not a valid photo","errorCode":"INVALID_INPUT"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"standardEmailPhotoUrl":"https://example.com/photo"}`))
	})

	return mux
}

func newUploadService(serverURL string) app.Service {
	return app.Service{
		Records: adapters.NewRestRecordAdapter(adapters.RestRecordConfig{
			InstanceURL: serverURL,
			AccessToken: "token",
			APIVersion:  "60.0",
		}),
	}
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))
	return path
}

func TestUploadPhotoFlow(t *testing.T) {
	t.Run("uploads and links the photo", func(t *testing.T) {
		org := &fakeOrg{documents: map[string]string{}, userIDs: []string{"005xx000001X8UzAAK"}}
		server := httptest.NewServer(org.handler(t))
		defer server.Close()

		service := newUploadService(server.URL)
		userID, err := service.ResolveUserID(t.Context(), parseFilters("Alias=grace"))
		require.NoError(t, err)
		require.Equal(t, "005xx000001X8UzAAK", userID)

		result, err := service.UploadPhoto(t.Context(), app.UploadPhotoRequest{
			UserID:    userID,
			PhotoPath: writePhoto(t),
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.ContentDocumentID)
		require.Len(t, org.documents, 1, "document stays owned by the platform")
		require.Zero(t, org.deleteCalls)
	})

	t.Run("rejected link deletes the orphaned document", func(t *testing.T) {
		org := &fakeOrg{documents: map[string]string{}, userIDs: []string{"005xx000001X8UzAAK"}, rejectPhoto: true}
		server := httptest.NewServer(org.handler(t))
		defer server.Close()

		service := newUploadService(server.URL)
		_, err := service.UploadPhoto(t.Context(), app.UploadPhotoRequest{
			UserID:    "005xx000001X8UzAAK",
			PhotoPath: writePhoto(t),
		})
		require.Error(t, err)
		require.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
		require.Contains(t, err.Error(), "not a valid photo")
		require.Equal(t, 1, org.deleteCalls, "cleanup delete observed exactly once")
		require.Empty(t, org.documents, "orphaned document removed")
	})

	t.Run("ambiguous user match lists every id", func(t *testing.T) {
		org := &fakeOrg{documents: map[string]string{}, userIDs: []string{"005A", "005B"}}
		server := httptest.NewServer(org.handler(t))
		defer server.Close()

		service := newUploadService(server.URL)
		_, err := service.ResolveUserID(t.Context(), parseFilters("Alias=grace"))
		require.Error(t, err)
		require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
		require.Contains(t, err.Error(), "005A")
		require.Contains(t, err.Error(), "005B")
	})

	t.Run("no user match", func(t *testing.T) {
		org := &fakeOrg{documents: map[string]string{}}
		server := httptest.NewServer(org.handler(t))
		defer server.Close()

		service := newUploadService(server.URL)
		_, err := service.ResolveUserID(t.Context(), parseFilters("Alias=grace"))
		require.Error(t, err)
		require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
	})
}
