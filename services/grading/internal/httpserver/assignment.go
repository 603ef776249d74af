package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/classroom/pkg/apperr"
	"github.com/Skotchmaster/classroom/pkg/logging"
	"github.com/Skotchmaster/classroom/pkg/principal"
	"github.com/Skotchmaster/classroom/services/grading/internal/service"
	"github.com/Skotchmaster/classroom/services/grading/internal/transport"
)

type AssignmentHTTP struct {
	Svc *service.AssignmentService
}

func current(c echo.Context) (principal.Principal, error) {
	p, ok := principal.FromContext(c.Request().Context())
	if !ok {
		return principal.Principal{}, apperr.Forbidden()
	}
	return p, nil
}

func bind(c echo.Context, req any, event string) error {
	if err := c.Bind(req); err != nil {
		logging.FromContext(c.Request().Context()).Warn(event, "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("invalid body")
	}
	return c.Validate(req)
}

func (h *AssignmentHTTP) List(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListByCourse(c.Request().Context(), p, c.QueryParam("courseId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewAssignmentSummaries(items))
}

func (h *AssignmentHTTP) Get(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	v, err := h.Svc.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewAssignmentDetails(v))
}

func (h *AssignmentHTTP) Create(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.CreateAssignmentRequest
	if err := bind(c, &req, "create_assignment_error"); err != nil {
		return err
	}

	a, err := h.Svc.Create(c.Request().Context(), p, service.CreateInput{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, transport.NewAssignmentDetails(&service.View{Assignment: a}))
}

func (h *AssignmentHTTP) Update(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.UpdateAssignmentRequest
	if err := bind(c, &req, "update_assignment_error"); err != nil {
		return err
	}

	a, err := h.Svc.Update(c.Request().Context(), p, c.Param("id"), service.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, transport.NewAssignmentSummary(a))
}

func (h *AssignmentHTTP) Delete(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AssignmentHTTP) Submit(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.SubmitRequest
	if err := bind(c, &req, "submit_error"); err != nil {
		return err
	}
	sub, err := h.Svc.Submit(c.Request().Context(), p, c.Param("id"), req.Content)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *AssignmentHTTP) ListSubmissions(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListSubmissions(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AssignmentHTTP) Grade(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	var req transport.GradeRequest
	if err := bind(c, &req, "grade_error"); err != nil {
		return err
	}
	sub, err := h.Svc.Grade(c.Request().Context(), p, c.Param("id"), c.Param("submissionId"), *req.Grade, req.Feedback)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *AssignmentHTTP) DeleteSubmission(c echo.Context) error {
	p, err := current(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteSubmission(c.Request().Context(), p, c.Param("id"), c.Param("submissionId")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
