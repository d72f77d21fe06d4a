package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wanderventure/wanderventure-server/jwtauth"
	"github.com/wanderventure/wanderventure-server/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("api-test-secret-0123456789abcdef")

func newTestRouter(t *testing.T, st *fakeStore, production bool, opts ...jwtauth.ConfigOption) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	authCfg, err := jwtauth.NewConfig(append([]jwtauth.ConfigOption{jwtauth.WithHS256(testSecret)}, opts...)...)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	NewHandler(st, authCfg, production, zap.New(core)).Register(router)
	return router, logs
}

func do(router http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func sessionCookie(t *testing.T, router http.Handler, identity string) *http.Cookie {
	t.Helper()
	w := do(router, http.MethodPost, "/jwt", identity)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == jwtauth.DefaultCookieName {
			return c
		}
	}
	t.Fatal("sign-in set no session cookie")
	return nil
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, &fakeStore{}, false)

	w := do(router, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HealthMessage, w.Body.String())
}

func TestSignIn(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"identity with email", `{"email":"guest@example.com"}`, http.StatusOK},
		{"identity without email", `{"uid":"abc","name":"Guest"}`, http.StatusOK},
		{"empty object", `{}`, http.StatusBadRequest},
		{"null", `null`, http.StatusBadRequest},
		{"array", `[1,2]`, http.StatusBadRequest},
		{"not json", `email=x`, http.StatusBadRequest},
		{"bad email", `{"email":"not-an-email"}`, http.StatusBadRequest},
		{"non-string email", `{"email":42}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &fakeStore{}, false)

			w := do(router, http.MethodPost, "/jwt", tt.body)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"success":true}`, w.Body.String())
				assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
			} else {
				assert.Empty(t, w.Header().Get("Set-Cookie"))
			}
		})
	}
}

func TestSignInProductionCookie(t *testing.T) {
	router, _ := newTestRouter(t, &fakeStore{}, true, jwtauth.WithTokenTTL(time.Hour))

	w := do(router, http.MethodPost, "/jwt", `{"email":"guest@example.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	header := w.Header().Get("Set-Cookie")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "SameSite=None")
	assert.Contains(t, header, "Max-Age=3600")
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := newTestRouter(t, &fakeStore{}, false)

	w := do(router, http.MethodPost, "/logout", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	header := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "token=;"), header)
	assert.Contains(t, header, "Max-Age=0")
}

func TestRooms(t *testing.T) {
	st := &fakeStore{rooms: []store.Document{
		{"_id": "r1", "description": "Ocean Suite", "room_Size": "Large"},
		{"_id": "r2", "description": "Budget twin", "room_Size": "Small"},
	}}
	router, _ := newTestRouter(t, st, false)

	t.Run("list all", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]store.Document](t, w), 2)
	})

	t.Run("search", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms?search=ocean", "")
		require.Equal(t, http.StatusOK, w.Code)
		rooms := decode[[]store.Document](t, w)
		require.Len(t, rooms, 1)
		assert.Equal(t, "r1", rooms[0]["_id"])
		assert.Equal(t, "ocean", st.lastSearch)
	})

	t.Run("no match is an empty array", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms?search=penthouse", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("get one", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms/r2", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Budget twin", decode[store.Document](t, w)["description"])
	})

	t.Run("missing", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms/r9", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := do(router, http.MethodGet, "/rooms/bad", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMyRoomsRequiresSession(t *testing.T) {
	st := &fakeStore{bookings: []store.Document{{"_id": "b1", "email": "guest@example.com"}}}
	router, _ := newTestRouter(t, st, false)

	t.Run("no cookie", func(t *testing.T) {
		w := do(router, http.MethodGet, "/myRooms", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, jwtauth.MessageTokenMissing, body["message"])
		assert.Empty(t, st.lastEmail)
	})

	t.Run("forged cookie", func(t *testing.T) {
		w := do(router, http.MethodGet, "/myRooms", "", &http.Cookie{Name: "token", Value: "a.b.c"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, jwtauth.MessageTokenInvalid, body["message"])
	})
}

func TestSignInWithRegisteredClaimNames(t *testing.T) {
	st := &fakeStore{bookings: []store.Document{{"_id": "b1", "email": "a@b.com"}}}
	router, _ := newTestRouter(t, st, false)

	identities := []string{
		`{"email":"a@b.com","exp":1}`,
		`{"email":"a@b.com","nbf":"later"}`,
		`{"email":"a@b.com","sub":42,"aud":["x","y"],"iat":"yesterday"}`,
	}
	for _, identity := range identities {
		t.Run(identity, func(t *testing.T) {
			cookie := sessionCookie(t, router, identity)

			w := do(router, http.MethodGet, "/myRooms?email=a@b.com", "", cookie)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Len(t, decode[[]store.Document](t, w), 1)
		})
	}
}

func TestSignInRequiredClaims(t *testing.T) {
	router, _ := newTestRouter(t, &fakeStore{}, false, jwtauth.WithRequiredClaims("email"))

	w := do(router, http.MethodPost, "/jwt", `{"name":"Guest"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "required claim missing: email", decode[map[string]any](t, w)["message"])
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	w = do(router, http.MethodPost, "/jwt", `{"email":"guest@example.com"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMyRoomsWithSession(t *testing.T) {
	st := &fakeStore{bookings: []store.Document{
		{"_id": "b1", "email": "guest@example.com", "bookingDate": "2026-11-01"},
		{"_id": "b2", "email": "other@example.com", "bookingDate": "2026-11-02"},
	}}
	router, _ := newTestRouter(t, st, false)
	cookie := sessionCookie(t, router, `{"email":"guest@example.com"}`)

	t.Run("own bookings", func(t *testing.T) {
		w := do(router, http.MethodGet, "/myRooms?email=guest@example.com", "", cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		bookings := decode[[]store.Document](t, w)
		require.Len(t, bookings, 1)
		assert.Equal(t, "b1", bookings[0]["_id"])
	})

	t.Run("another guest's bookings", func(t *testing.T) {
		w := do(router, http.MethodGet, "/myRooms?email=other@example.com", "", cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no filter", func(t *testing.T) {
		w := do(router, http.MethodGet, "/myRooms", "", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]store.Document](t, w), 2)
	})
}

func TestBookingLifecycle(t *testing.T) {
	st := &fakeStore{}
	router, _ := newTestRouter(t, st, false)

	w := do(router, http.MethodPost, "/myRooms", `{"_id":"client","email":"guest@example.com","bookingDate":"2026-11-01"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[store.InsertResult](t, w)
	assert.True(t, created.Acknowledged)
	id := created.InsertedID.(string)
	assert.NotEqual(t, "client", id)

	w = do(router, http.MethodPatch, "/myRooms/"+id, `{"bookingDate":"2026-12-24"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[store.UpdateResult](t, w)
	assert.Equal(t, int64(1), updated.ModifiedCount)
	assert.Equal(t, "2026-12-24", st.bookings[0]["bookingDate"])

	w = do(router, http.MethodPatch, "/myRooms/fresh", `{"bookingDate":"2027-01-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[store.UpdateResult](t, w).UpsertedCount)

	w = do(router, http.MethodDelete, "/myRooms/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, store.DeleteResult{Acknowledged: true, DeletedCount: 1}, decode[store.DeleteResult](t, w))

	w = do(router, http.MethodDelete, "/myRooms/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[store.DeleteResult](t, w).DeletedCount)
}

func TestBookingValidation(t *testing.T) {
	router, _ := newTestRouter(t, &fakeStore{}, false)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		msg    string
	}{
		{"create with empty body", http.MethodPost, "/myRooms", `{}`, http.StatusBadRequest, "non-empty"},
		{"patch without bookingDate", http.MethodPatch, "/myRooms/b1", `{"email":"x@y.z"}`, http.StatusBadRequest, "bookingDate is required"},
		{"patch with empty bookingDate", http.MethodPatch, "/myRooms/b1", `{"bookingDate":""}`, http.StatusBadRequest, "bookingDate is required"},
		{"patch with bad json", http.MethodPatch, "/myRooms/b1", `{`, http.StatusBadRequest, "JSON object"},
		{"patch with bad id", http.MethodPatch, "/myRooms/bad", `{"bookingDate":"2026-01-01"}`, http.StatusBadRequest, "invalid id"},
		{"delete with bad id", http.MethodDelete, "/myRooms/bad", "", http.StatusBadRequest, "invalid id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, decode[map[string]any](t, w)["message"], tt.msg)
		})
	}
}

func TestReviews(t *testing.T) {
	st := &fakeStore{}
	router, _ := newTestRouter(t, st, false)

	w := do(router, http.MethodGet, "/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(router, http.MethodPost, "/reviews", `{"rating":5,"reviewDate":"2026-10-01"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[store.InsertResult](t, w).Acknowledged)

	w = do(router, http.MethodGet, "/reviews", "")
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]store.Document](t, w)
	require.Len(t, reviews, 1)
	assert.Equal(t, float64(5), reviews[0]["rating"])

	w = do(router, http.MethodPost, "/reviews", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreFailureIsLoggedAndHidden(t *testing.T) {
	st := &fakeStore{err: errors.New("connection reset by peer")}
	router, logs := newTestRouter(t, st, false)

	w := do(router, http.MethodGet, "/reviews", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")

	entries := logs.FilterMessage("store operation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "list reviews", entries[0].ContextMap()["op"])
	assert.Equal(t, "connection reset by peer", entries[0].ContextMap()["error"])
}
