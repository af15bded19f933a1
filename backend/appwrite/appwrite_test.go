package appwrite

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"campusbite/backend"
	"campusbite/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProject is a tiny stand-in for the Appwrite REST API.
type fakeProject struct {
	mu       sync.Mutex
	sessions map[string]string // secret -> session id
	queries  []string
	uploads  []string
}

func newFakeProject(t *testing.T) (*fakeProject, *httptest.Server) {
	t.Helper()
	p := &fakeProject{sessions: map[string]string{}}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/account/sessions/email", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "password123" {
			writeErr(w, 401, "user_invalid_credentials", "Invalid credentials")
			return
		}
		p.mu.Lock()
		p.sessions["secret1"] = "s1"
		p.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "a_session_proj", Value: "secret1", Path: "/"})
		writeJSON(w, map[string]any{"$id": "s1", "userId": "acc1", "expire": "2030-01-01T00:00:00.000+00:00", "current": true, "secret": ""})
	})
	mux.HandleFunc("GET /v1/account/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		sid, ok := p.sessions[r.Header.Get("X-Appwrite-Session")]
		p.mu.Unlock()
		if !ok || (r.PathValue("id") != "current" && r.PathValue("id") != sid) {
			writeErr(w, 401, "general_unauthorized_scope", "User (role: guests) missing scope (account)")
			return
		}
		writeJSON(w, map[string]any{"$id": sid, "userId": "acc1", "expire": "2030-01-01T00:00:00.000+00:00", "current": true})
	})
	mux.HandleFunc("DELETE /v1/account/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		delete(p.sessions, r.Header.Get("X-Appwrite-Session"))
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /v1/databases/db/collections/users/documents", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.queries = append(p.queries, r.URL.Query()["queries[]"]...)
		p.mu.Unlock()
		writeJSON(w, map[string]any{"total": 1, "documents": []any{map[string]any{
			"$id": "u1", "$createdAt": "2024-05-01T10:00:00.000+00:00",
			"accountId": "acc1", "email": "hana@campus.edu", "username": "hana", "role": "student",
		}}})
	})
	mux.HandleFunc("GET /v1/databases/db/collections/foods/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"$id": r.PathValue("id"), "$createdAt": "2024-05-01T10:00:00.000+00:00",
			"name": "Shiro", "price": "80.5", "catagory": "lunch", "postDate": "",
			"Restaurant_id": map[string]any{"$id": "r1", "name": "Hana's Restaurant"},
			"users":         []any{map[string]any{"$id": "u1"}, "u2"},
		})
	})
	mux.HandleFunc("GET /v1/databases/db/collections/foods/documents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"total": 2, "documents": []any{
			map[string]any{"$id": "f1", "name": "Shiro", "price": 80, "image_url": "http://img/f1"},
			map[string]any{"$id": "f2", "name": "Tibs", "price": "not-a-number", "image_url": "http://img/f2"},
		}})
	})
	mux.HandleFunc("POST /v1/storage/buckets/images/files", func(w http.ResponseWriter, r *http.Request) {
		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeErr(w, 400, "storage_file_empty", err.Error())
			return
		}
		data, _ := io.ReadAll(file)
		p.mu.Lock()
		p.uploads = append(p.uploads, hdr.Filename)
		p.mu.Unlock()
		writeJSON(w, map[string]any{"$id": "f1", "bucketId": "images", "name": hdr.Filename,
			"mimeType": hdr.Header.Get("Content-Type"), "sizeOriginal": len(data)})
	})
	mux.HandleFunc("GET /v1/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	mux.HandleFunc("GET /v1/limited", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, 429, "general_rate_limit_exceeded", "Rate limit for the current endpoint has been exceeded.")
	})
	mux.HandleFunc("POST /v1/account/sessions/busy", func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, 401, "user_session_already_exists", "Creation of a session is prohibited when a session is active.")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return p, srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, typ, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": msg, "code": code, "type": typ})
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(Config{
		Endpoint:   srv.URL + "/v1",
		ProjectID:  "proj",
		DatabaseID: "db",
		BucketID:   "images",
		Collections: Collections{
			Users: "users", Restaurants: "restaurants", Foods: "foods",
			Orders: "orders", Deliveries: "deliveries", Notifications: "notifications",
		},
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

func TestSessionCarriesSecretAcrossClients(t *testing.T) {
	_, srv := newFakeProject(t)
	ctx := context.Background()
	phone := newTestClient(t, srv).Backend()

	sess, err := phone.Auth.CreateSession(ctx, "hana@campus.edu", "password123")
	require.NoError(t, err)
	assert.Equal(t, "s1:secret1", sess.ID)
	assert.Equal(t, "acc1", sess.UserID)

	cur, err := phone.Auth.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, cur.ID)

	// A second process resumes the same session from the token alone.
	laptop := newTestClient(t, srv).Backend()
	_, err = laptop.Auth.CurrentSession(ctx)
	assert.True(t, backend.IsUnauthorized(err))

	resumed, err := laptop.Auth.Resume(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "acc1", resumed.UserID)

	require.NoError(t, laptop.Auth.DeleteSession(ctx, sess.ID))
	_, err = phone.Auth.CurrentSession(ctx)
	assert.True(t, backend.IsUnauthorized(err))
}

func TestInvalidCredentials(t *testing.T) {
	_, srv := newFakeProject(t)
	_, err := newTestClient(t, srv).Backend().Auth.CreateSession(context.Background(), "hana@campus.edu", "nope")
	assert.True(t, backend.IsUnauthorized(err))
	assert.False(t, backend.IsSessionActive(err))
}

func TestErrorKinds(t *testing.T) {
	_, srv := newFakeProject(t)
	c := newTestClient(t, srv)
	ctx := context.Background()

	err := c.do(ctx, http.MethodGet, "/limited", nil, nil, nil)
	assert.True(t, backend.IsRateLimited(err))

	err = c.do(ctx, http.MethodPost, "/account/sessions/busy", nil, map[string]any{}, nil)
	assert.True(t, backend.IsSessionActive(err))

	err = c.do(ctx, http.MethodGet, "/slow", nil, nil, nil)
	assert.ErrorIs(t, err, backend.ErrTimeout)
	assert.False(t, backend.IsRateLimited(err))
}

func TestListSendsQueries(t *testing.T) {
	p, srv := newFakeProject(t)
	users, err := newTestClient(t, srv).Backend().Users.FindByAccount(context.Background(), "acc1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
	assert.True(t, users[0].IsPublic)
	assert.Equal(t, "en", users[0].Language)
	assert.Equal(t, 2024, users[0].CreatedAt.Year())

	require.Len(t, p.queries, 2)
	assert.JSONEq(t, `{"method":"equal","attribute":"accountId","values":["acc1"]}`, p.queries[0])
	assert.JSONEq(t, `{"method":"orderAsc","attribute":"$createdAt"}`, p.queries[1])
}

func TestDocumentRelationsDecodeToIDs(t *testing.T) {
	_, srv := newFakeProject(t)
	item, err := newTestClient(t, srv).Backend().Foods.Get(context.Background(), "food1")
	require.NoError(t, err)

	assert.Equal(t, "r1", item.RestaurantID)
	assert.Equal(t, []string{"u1", "u2"}, item.OwnerUserIDs)
	assert.Equal(t, 80.5, item.Price)
	assert.Equal(t, "lunch", item.Category)
	assert.Nil(t, item.Available)
	assert.True(t, item.PostDate.IsZero())
}

func TestUploadSendsMultipart(t *testing.T) {
	p, srv := newFakeProject(t)
	files := newTestClient(t, srv).Backend().Files
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

	f, err := files.Upload(context.Background(), backend.FileInput{Name: "dish.webp", Data: png})
	require.NoError(t, err)
	assert.Equal(t, "f1", f.ID)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, []string{"dish.jpg"}, p.uploads)

	url := files.ViewURL(f.ID)
	assert.True(t, strings.HasSuffix(url, "/v1/storage/buckets/images/files/f1/view?project=proj"), url)

	_, err = files.Upload(context.Background(), backend.FileInput{Name: "notes.txt", Data: []byte("hello")})
	var upErr *backend.UploadError
	assert.ErrorAs(t, err, &upErr)
	assert.Len(t, p.uploads, 1)
}

func TestListSkipsMalformedDocuments(t *testing.T) {
	_, srv := newFakeProject(t)
	before := testutil.ToFloat64(metrics.SkippedRecords.WithLabelValues("document"))

	items, err := newTestClient(t, srv).Backend().Foods.List(context.Background(), backend.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "f1", items[0].ID)
	assert.Equal(t, 80.0, items[0].Price)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SkippedRecords.WithLabelValues("document")))
}
