package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/service"
)

var errBadParameter = errors.New("invalid query parameter")

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{
		service: service,
	}
}

// Register mounts every report under /api/v1/reports.
func (h *ReportHandler) Register(e *echo.Echo) {
	g := e.Group("/api/v1/reports")
	g.GET("/summary-analyst", h.SummaryAnalyst)
	g.GET("/top-doctors", h.TopDoctors)
	g.GET("/appointment-status-summary", h.AppointmentStatusSummary)
	g.GET("/appointments-by-specialty", h.AppointmentBySpecialty)
	g.GET("/specialty-statistics", h.SpecialtyStatistics)
	g.GET("/doctor-appointments", h.DoctorsAppointmentsStatistics)
	g.GET("/doctor-reviews", h.DoctorReviewStats)
}

func (h *ReportHandler) SummaryAnalyst(c echo.Context) error {
	req := domain.SummaryAnalystRequest{
		TypeSummary: domain.SummaryType(c.QueryParam("typeSummary")),
		Period:      period.Kind(c.QueryParam("period")),
	}
	if start, end := c.QueryParam("startDate"), c.QueryParam("endDate"); start != "" || end != "" {
		req.DateRange = &period.DateRange{StartDate: start, EndDate: end}
	}
	resp, err := h.service.SummaryAnalyst(c.Request().Context(), req)
	return respond(c, resp, err)
}

func (h *ReportHandler) TopDoctors(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.service.TopDoctors(c.Request().Context(), domain.TopDoctorsRequest{
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		Limit:     limit,
	})
	return respond(c, resp, err)
}

func (h *ReportHandler) AppointmentStatusSummary(c echo.Context) error {
	resp, err := h.service.AppointmentStatusSummary(c.Request().Context(), domain.AppointmentStatusSummaryRequest{
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	})
	return respond(c, resp, err)
}

func (h *ReportHandler) AppointmentBySpecialty(c echo.Context) error {
	years, err := queryInts(c, "years")
	if err != nil {
		return fail(c, err)
	}
	months, err := queryInts(c, "months")
	if err != nil {
		return fail(c, err)
	}
	for _, m := range months {
		if m < 1 || m > 12 {
			return fail(c, fmt.Errorf("%w: month %d", errBadParameter, m))
		}
	}
	resp, err := h.service.AppointmentBySpecialty(c.Request().Context(), domain.AppointmentBySpecialtyRequest{
		Years:     years,
		Months:    months,
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	})
	return respond(c, resp, err)
}

func (h *ReportHandler) SpecialtyStatistics(c echo.Context) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.service.SpecialtyStatistics(c.Request().Context(), domain.SpecialtyStatisticsRequest{
		TimeRange: c.QueryParam("timeRange"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
		Specialty: c.QueryParam("specialty"),
		Hospital:  c.QueryParam("hospital"),
		Page:      page,
		PageSize:  pageSize,
	})
	return respond(c, resp, err)
}

func (h *ReportHandler) DoctorsAppointmentsStatistics(c echo.Context) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.service.DoctorsAppointmentsStatistics(c.Request().Context(), domain.DoctorAppointmentsStatisticsRequest{
		FromDate:  c.QueryParam("fromDate"),
		ToDate:    c.QueryParam("toDate"),
		DoctorIDs: queryList(c, "doctorIds"),
		Status:    c.QueryParam("status"),
		Search:    c.QueryParam("search"),
		Page:      page,
		PageSize:  pageSize,
	})
	return respond(c, resp, err)
}

func (h *ReportHandler) DoctorReviewStats(c echo.Context) error {
	page, pageSize, err := pagination(c)
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.service.DoctorReviewStats(c.Request().Context(), domain.DoctorReviewStatsRequest{
		Name:     c.QueryParam("name"),
		DoctorID: c.QueryParam("doctorId"),
		Page:     page,
		PageSize: pageSize,
	})
	return respond(c, resp, err)
}

func respond(c echo.Context, data any, err error) error {
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func fail(c echo.Context, err error) error {
	code := http.StatusInternalServerError
	if errors.Is(err, errBadParameter) || service.IsValidation(err) {
		code = http.StatusBadRequest
	}
	return c.JSON(code, map[string]interface{}{
		"status":  "fail",
		"message": err.Error(),
	})
}

func pagination(c echo.Context) (int, int, error) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := queryInt(c, "pageSize", 20)
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadParameter, name)
	}
	return n, nil
}

// queryList accepts both repeated and comma-separated values.
func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryInts(c echo.Context, name string) ([]int, error) {
	var out []int
	for _, v := range queryList(c, name) {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be numbers", errBadParameter, name)
		}
		out = append(out, n)
	}
	return out, nil
}
