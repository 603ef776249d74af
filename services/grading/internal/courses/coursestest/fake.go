// Package coursestest is an in-memory course directory.
package coursestest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/grading/internal/courses"
)

type Fake struct {
	mu      sync.Mutex
	courses map[string]courses.Course
	members map[string]map[string]bool

	// Err, when set, is returned from every lookup.
	Err error
}

// AddCourse registers a course owned by teacherID, who is also its first
// member.
func (f *Fake) AddCourse(id, teacherID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.courses == nil {
		f.courses = map[string]courses.Course{}
		f.members = map[string]map[string]bool{}
	}
	f.courses[id] = courses.Course{ID: id, Name: id, TeacherID: teacherID}
	f.members[id] = map[string]bool{teacherID: true}
}

func (f *Fake) AddMember(courseID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[courseID][userID] = true
}

func (f *Fake) Lookup(_ context.Context, p principal.Principal, courseID string) (courses.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return courses.Course{}, f.Err
	}
	c, ok := f.courses[courseID]
	if !ok {
		return courses.Course{}, courses.ErrNotFound
	}
	if !f.members[courseID][p.UserID] {
		return courses.Course{}, courses.ErrNotMember
	}
	return c, nil
}
