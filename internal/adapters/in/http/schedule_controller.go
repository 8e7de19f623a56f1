package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/in"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ScheduleController struct {
	useCase  in.ScheduleUseCase
	exporter out.ScheduleExporterPort
	logger   out.LoggerPort
}

func NewScheduleController(useCase in.ScheduleUseCase, exporter out.ScheduleExporterPort, logger out.LoggerPort) *ScheduleController {
	return &ScheduleController{
		useCase:  useCase,
		exporter: exporter,
		logger:   logger,
	}
}

func (c *ScheduleController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.health)
	router.GET("/groups", c.listGroups)
	router.GET("/schedule", c.getSchedule)
	router.GET("/schedule/xlsx", c.exportSchedule)
}

// Параметры обязательны, но пустое значение допустимо: пустая группа даёт 404
type ScheduleRequest struct {
	GroupName string
	StartDate string
	EndDate   string
}

type ScheduleResponse struct {
	Group    string               `json:"group"`
	Schedule *domain.WeekSchedule `json:"schedule"`
}

func (c *ScheduleController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *ScheduleController) listGroups(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"groups": c.useCase.GroupNames()})
}

func (c *ScheduleController) getSchedule(ctx *gin.Context) {
	req, ok := c.bindRequest(ctx)
	if !ok {
		return
	}

	schedule, err := c.useCase.GetSchedule(ctx.Request.Context(), req.GroupName, req.StartDate, req.EndDate)
	if err != nil {
		c.handleError(ctx, req, err)
		return
	}

	ctx.JSON(http.StatusOK, ScheduleResponse{
		Group:    req.GroupName,
		Schedule: schedule,
	})
}

func (c *ScheduleController) exportSchedule(ctx *gin.Context) {
	req, ok := c.bindRequest(ctx)
	if !ok {
		return
	}

	schedule, err := c.useCase.GetSchedule(ctx.Request.Context(), req.GroupName, req.StartDate, req.EndDate)
	if err != nil {
		c.handleError(ctx, req, err)
		return
	}

	buf, err := c.exporter.ExportSchedule(req.GroupName, schedule)
	if err != nil {
		c.handleError(ctx, req, err)
		return
	}

	filename := fmt.Sprintf("%s_%s_%s.xlsx", req.GroupName, req.StartDate, req.EndDate)
	ctx.Header("Content-Description", "File Transfer")
	ctx.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (c *ScheduleController) bindRequest(ctx *gin.Context) (ScheduleRequest, bool) {
	var req ScheduleRequest
	params := []struct {
		name  string
		value *string
	}{
		{"group_name", &req.GroupName},
		{"start_date", &req.StartDate},
		{"end_date", &req.EndDate},
	}

	var missing []string
	for _, param := range params {
		value, exists := ctx.GetQuery(param.name)
		if !exists {
			missing = append(missing, param.name)
			continue
		}
		*param.value = value
	}

	if len(missing) > 0 {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": "missing query parameters: " + strings.Join(missing, ", "),
		})
		return req, false
	}
	return req, true
}

func (c *ScheduleController) handleError(ctx *gin.Context, req ScheduleRequest, err error) {
	ctx.Error(err)

	if errors.Is(err, domain.ErrGroupNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": "Группа не найдена"})
		return
	}

	fields := out.LogFields{
		"group":     req.GroupName,
		"startDate": req.StartDate,
		"endDate":   req.EndDate,
		"requestId": ctx.GetString(requestIDKey),
		"error":     err.Error(),
	}

	var fetchErr *domain.RemoteFetchError
	if errors.As(err, &fetchErr) {
		fields["statusCode"] = fetchErr.StatusCode
	}
	c.logger.Error("http.schedule.failed", fields)

	ctx.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
