package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken(ctx context.Context) (string, error) { return string(s), nil }

func TestDashboardStatsStudentMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/stats", r.URL.Path)
		assert.Equal(t, "student", r.URL.Query().Get("role"))
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"total_uploads":5,"approved_uploads":3,"pending_reviews":1,"total_downloads":12}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	got, err := c.DashboardStats(context.Background(), Scope{Role: RoleStudent, UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, &StatsView{
		Role:              RoleStudent,
		TotalDocuments:    5,
		PendingReviews:    1,
		ApprovedDocuments: 3,
		TotalDownloads:    12,
	}, got)
}

func TestDashboardStatsSupervisorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"department_documents":20,"approved_documents":15,"assigned_reviews":4,"completed_reviews":9}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	got, err := c.DashboardStats(context.Background(), Scope{Role: RoleSupervisor, DepartmentID: "d1"})
	require.NoError(t, err)

	// Supervisors see assigned reviews in the pending column and completed
	// reviews in the downloads column.
	assert.Equal(t, 4, got.PendingReviews)
	assert.Equal(t, 9, got.TotalDownloads)
	assert.Equal(t, 20, got.TotalDocuments)
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"message field preferred", 400, `{"message":"bad title","detail":"ignored"}`, "bad title"},
		{"detail fallback", 422, `{"detail":"missing file"}`, "missing file"},
		{"status text fallback", 500, `not json`, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, nil)
			_, err := c.Profile(context.Background())
			require.Error(t, err)

			var ae *APIError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.code, ae.StatusCode)
			assert.Equal(t, tt.want, ae.Message)
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("stale"))
	_, err := c.Profile(context.Background())
	assert.True(t, IsUnauthorized(err))

	assert.False(t, IsUnauthorized(nil))
}

func TestUploadDocumentMultipart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thesis.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf-bytes"), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/documents/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "My Thesis", r.FormValue("title"))
		assert.Equal(t, "final draft", r.FormValue("description"))
		assert.Equal(t, "physics", r.FormValue("department"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "thesis.pdf", hdr.Filename)

		var buf bytes.Buffer
		_, _ = buf.ReadFrom(f)
		assert.Equal(t, "pdf-bytes", buf.String())

		_, _ = w.Write([]byte(`{"id":"doc-1","title":"My Thesis","status":"pending"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	doc, err := c.UploadDocument(context.Background(), "My Thesis", "final draft", "physics", path)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, StatusPending, doc.Status)
}

func TestDownloadDocumentStreams(t *testing.T) {
	payload := []byte("binary-file-content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/documents/doc-1/download", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	var buf bytes.Buffer
	n, err := c.DownloadDocument(context.Background(), "doc-1", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, buf.Bytes())
}

func TestDownloadDocumentErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"no such document"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	var buf bytes.Buffer
	_, err := c.DownloadDocument(context.Background(), "missing", &buf)
	require.Error(t, err)
	assert.Zero(t, buf.Len())

	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "no such document", ae.Message)
}

func TestListDocumentsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "thesis", q.Get("search"))
		assert.Equal(t, "pending", q.Get("status"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("limit"))
		_, _ = w.Write([]byte(`{"items":[{"id":"d1","title":"A"}],"total":1,"page":2,"limit":25,"pages":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, staticToken("tok"))
	page, err := c.ListDocuments(context.Background(), DocumentFilter{
		Search: "thesis",
		Status: StatusPending,
		Page:   2,
		Limit:  25,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Total)
}

func TestRefreshSendsRefreshTokenAsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/refresh", r.URL.Path)
		assert.Equal(t, "Bearer refresh-tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"access_token":"fresh","token_type":"bearer"}`))
	}))
	defer srv.Close()

	// The access-token provider must not be consulted for refreshes.
	c := NewClient(srv.URL, staticToken("access-tok"))
	resp, err := c.Refresh(context.Background(), "refresh-tok")
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp.AccessToken)
}
