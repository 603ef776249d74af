package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/academic/internal/service"
	"github.com/Skotchmaster/classroom/services/academic/internal/transport"
	"github.com/Skotchmaster/classroom/services/academic/internal/util"
)

type CourseHTTP struct {
	Svc *service.CourseService
}

func current(c echo.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(c.Request().Context())
	if !ok {
		return principal.Principal{}, apperr.Forbidden()
	}
	return p, nil
}

func (h *CourseHTTP) ListMine(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListMine(c.Request().Context(), p)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewCourseSummaries(items))
}

func (h *CourseHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "course.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	page = offset/limit + 1

	total, docs, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		l.Warn("search_failed", "error", err)
		return mapError(err)
	}

	items := make([]transport.CourseSummary, len(docs))
	for i, d := range docs {
		items[i] = transport.SummaryFromDoc(d)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *CourseHTTP) Get(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	course, err := h.Svc.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewCourseDetails(course))
}

func (h *CourseHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "course.create")

	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.CreateCourseRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_course_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.Svc.Create(ctx, p, service.CreateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, transport.NewCourseDetails(course))
}

func (h *CourseHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()

	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.UpdateCourseRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Warn("update_course_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	course, err := h.Svc.Update(ctx, p, c.Param("id"), service.UpdateInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewCourseSummary(course))
}

func (h *CourseHTTP) Join(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	course, err := h.Svc.Join(c.Request().Context(), p, c.QueryParam("code"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewCourseSummary(course))
}

func (h *CourseHTTP) Leave(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Leave(c.Request().Context(), p, c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CourseHTTP) RemoveMember(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.RemoveMember(c.Request().Context(), p, c.Param("id"), c.Param("memberId")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CourseHTTP) Delete(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
