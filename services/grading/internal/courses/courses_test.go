package courses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/classroom/pkg/principal"
)

func TestHTTPDirectory_Lookup(t *testing.T) {
	t.Parallel()

	student := principal.Principal{UserID: "s-1", Email: "ada@example.com", Role: principal.RoleStudent}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal.FromHeaders(r.Header)
		switch {
		case r.URL.Path == "/courses/missing":
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/courses/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case !ok || p.UserID != "s-1":
			w.WriteHeader(http.StatusForbidden)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "c-1", "name": "Compilers", "teacherId": "t-1", "inviteCode": "ABCDEF0123"})
		}
	}))
	t.Cleanup(srv.Close)

	d := NewHTTPDirectory(srv.URL+"/", time.Second)
	ctx := context.Background()

	c, err := d.Lookup(ctx, student, "c-1")
	require.NoError(t, err)
	assert.Equal(t, Course{ID: "c-1", Name: "Compilers", TeacherID: "t-1"}, c)

	_, err = d.Lookup(ctx, principal.Principal{UserID: "s-2", Role: principal.RoleStudent}, "c-1")
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = d.Lookup(ctx, student, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = d.Lookup(ctx, student, "broken")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPDirectory_Down(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewHTTPDirectory(srv.URL, time.Second).Lookup(context.Background(), principal.Principal{UserID: "s-1"}, "c-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}
