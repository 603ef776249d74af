// Package courses asks the academic service who owns a course and whether
// the caller belongs to it.
package courses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Skotchmaster/classroom/pkg/principal"
)

var (
	ErrNotFound    = errors.New("course not found")
	ErrNotMember   = errors.New("not a member of the course")
	ErrUnavailable = errors.New("academic service unavailable")
)

type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacherId"`
}

// Directory resolves a course as seen by p. It fails with ErrNotMember when
// p does not belong to the course.
type Directory interface {
	Lookup(ctx context.Context, p principal.Principal, courseID string) (Course, error)
}

// HTTPDirectory calls the academic service inside the trusted network,
// forwarding the caller's propagation headers.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDirectory) Lookup(ctx context.Context, p principal.Principal, courseID string) (Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/courses/"+url.PathEscape(courseID), nil)
	if err != nil {
		return Course{}, err
	}
	p.Apply(req.Header)

	resp, err := d.client.Do(req)
	if err != nil {
		return Course{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Course{}, ErrNotFound
	case http.StatusForbidden:
		return Course{}, ErrNotMember
	default:
		return Course{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var c Course
	if err := json.NewDecoder(resp.Body).Decode(&c); err != nil {
		return Course{}, fmt.Errorf("%w: decode course: %v", ErrUnavailable, err)
	}
	return c, nil
}
