package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/classroom/pkg/db/dbtest"
	"github.com/Skotchmaster/classroom/pkg/events/eventstest"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/grading/internal/courses/coursestest"
	"github.com/Skotchmaster/classroom/services/grading/internal/models"
	"github.com/Skotchmaster/classroom/services/grading/internal/repo"
	"github.com/Skotchmaster/classroom/services/grading/internal/service"
	"github.com/Skotchmaster/classroom/services/grading/internal/transport"
)

var (
	teacher = principal.Principal{UserID: "t-1", Email: "grace@example.com", Firstname: "Grace", Lastname: "Hopper", Role: principal.RoleTeacher}
	student = principal.Principal{UserID: "s-1", Email: "ada@example.com", Firstname: "Ada", Lastname: "Lovelace", Role: principal.RoleStudent}
	admin   = principal.Principal{UserID: "a-1", Email: "root@example.com", Role: principal.RoleAdmin}
)

func newEcho(t *testing.T) *echo.Echo {
	t.Helper()
	gdb := dbtest.Open(t, &models.Assignment{}, &models.Submission{})

	dir := &coursestest.Fake{}
	dir.AddCourse("c-1", teacher.UserID)
	dir.AddMember("c-1", student.UserID)

	e := echo.New()
	Register(e, &Deps{
		AssignmentHandler: &AssignmentHTTP{Svc: &service.AssignmentService{
			Repo:    repo.New(gdb),
			Courses: dir,
			Events:  &eventstest.Recorder{},
		}},
		DB:     gdb,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return e
}

// as sends the request with the propagation headers the gateway would set.
func as(t *testing.T, e *echo.Echo, p principal.Principal, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if p.UserID != "" {
		p.Apply(req.Header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func code(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func createAssignment(t *testing.T, e *echo.Echo, title string) transport.AssignmentDetails {
	t.Helper()
	rec := as(t, e, teacher, http.MethodPost, "/assignments",
		`{"courseId":"c-1","title":"`+title+`","description":"write it","dueAt":"2099-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var details transport.AssignmentDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	return details
}

func TestAnonymousIsForbidden(t *testing.T) {
	t.Parallel()
	e := newEcho(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/assignments?courseId=c-1"},
		{http.MethodGet, "/assignments/a-1"},
		{http.MethodPost, "/assignments"},
		{http.MethodPost, "/assignments/a-1/submissions"},
		{http.MethodDelete, "/assignments/a-1/submissions/s-1"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := as(t, e, principal.Principal{}, r.method, r.path, "")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "FORBIDDEN", code(t, rec))
		})
	}
}

func TestRoleGuards(t *testing.T) {
	t.Parallel()
	e := newEcho(t)
	body := `{"courseId":"c-1","title":"Lexer","dueAt":"2099-01-01T00:00:00Z"}`

	for _, p := range []principal.Principal{student, admin} {
		rec := as(t, e, p, http.MethodPost, "/assignments", body)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %s", p.Role)
	}

	a := createAssignment(t, e, "Lexer")

	rec := as(t, e, student, http.MethodGet, "/assignments/"+a.ID+"/submissions", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = as(t, e, teacher, http.MethodPost, "/assignments/"+a.ID+"/submissions", `{"content":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = as(t, e, student, http.MethodDelete, "/assignments/"+a.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = as(t, e, student, http.MethodGet, "/assignments/"+a.ID+"/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssignmentFlow(t *testing.T) {
	t.Parallel()
	e := newEcho(t)
	a := createAssignment(t, e, "Lexer")
	assert.Equal(t, "c-1", a.CourseID)

	rec := as(t, e, teacher, http.MethodPost, "/assignments", `{"courseId":"c-1","title":"lexer","dueAt":"2099-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ASSIGNMENT_ALREADY_EXISTS", code(t, rec))

	rec = as(t, e, teacher, http.MethodPost, "/assignments", `{"courseId":"missing","title":"Parser","dueAt":"2099-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "COURSE_NOT_FOUND", code(t, rec))

	rec = as(t, e, teacher, http.MethodPost, "/assignments", `{"courseId":"c-1","title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", code(t, rec))

	rec = as(t, e, student, http.MethodGet, "/assignments?courseId=c-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []transport.AssignmentSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	rec = as(t, e, student, http.MethodPost, "/assignments/"+a.ID+"/submissions", `{"content":"my answer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, models.StatusSubmitted, sub.Status)
	assert.Equal(t, student.UserID, sub.StudentID)

	rec = as(t, e, teacher, http.MethodPatch, "/assignments/"+a.ID+"/submissions/"+sub.ID, `{"grade":88,"feedback":"solid"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = as(t, e, teacher, http.MethodPatch, "/assignments/"+a.ID+"/submissions/"+sub.ID, `{"feedback":"no grade"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", code(t, rec))

	rec = as(t, e, student, http.MethodGet, "/assignments/"+a.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine transport.AssignmentDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.NotNil(t, mine.MySubmission)
	require.NotNil(t, mine.MySubmission.Grade)
	assert.InDelta(t, 88.0, *mine.MySubmission.Grade, 0.001)
	assert.Empty(t, mine.Submissions)

	rec = as(t, e, teacher, http.MethodGet, "/assignments/"+a.ID+"/submissions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	assert.Len(t, subs, 1)

	rec = as(t, e, teacher, http.MethodPatch, "/assignments/"+a.ID, `{"title":"Scanner"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Scanner")

	rec = as(t, e, teacher, http.MethodDelete, "/assignments/"+a.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = as(t, e, student, http.MethodGet, "/assignments/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ASSIGNMENT_NOT_FOUND", code(t, rec))
}

func TestNonMemberCannotSeeAssignments(t *testing.T) {
	t.Parallel()
	e := newEcho(t)
	a := createAssignment(t, e, "Lexer")
	stranger := principal.Principal{UserID: "s-9", Role: principal.RoleStudent}

	rec := as(t, e, stranger, http.MethodGet, "/assignments?courseId=c-1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_MEMBER", code(t, rec))

	rec = as(t, e, stranger, http.MethodPost, "/assignments/"+a.ID+"/submissions", `{"content":"x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_MEMBER", code(t, rec))
}
