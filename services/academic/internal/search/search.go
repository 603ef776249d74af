// Package search finds courses by name and description.
package search

import (
	"context"

	"github.com/Skotchmaster/classroom/services/academic/internal/models"
	"github.com/Skotchmaster/classroom/services/academic/internal/repo"
)

// Doc is what gets indexed. Invite codes never leave the database.
type Doc struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	TeacherID        string `json:"teacherId"`
	TeacherFirstname string `json:"teacherFirstname"`
	TeacherLastname  string `json:"teacherLastname"`
}

func DocFrom(c *models.Course) Doc {
	return Doc{
		ID:               c.ID,
		Name:             c.Name,
		Description:      c.Description,
		TeacherID:        c.TeacherID,
		TeacherFirstname: c.TeacherFirstname,
		TeacherLastname:  c.TeacherLastname,
	}
}

type Index interface {
	Put(ctx context.Context, d Doc) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, from, size int) (int64, []Doc, error)
}

// DBIndex queries the course table directly. Writes are no-ops since the
// table already is the index.
type DBIndex struct {
	Repo *repo.GormRepo
}

func (DBIndex) Put(context.Context, Doc) error      { return nil }
func (DBIndex) Delete(context.Context, string) error { return nil }

func (i DBIndex) Search(ctx context.Context, q string, from, size int) (int64, []Doc, error) {
	total, items, err := i.Repo.SearchLike(ctx, q, from, size)
	if err != nil {
		return 0, nil, err
	}
	docs := make([]Doc, len(items))
	for n := range items {
		docs[n] = DocFrom(&items[n])
	}
	return total, docs, nil
}
