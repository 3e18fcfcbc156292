package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/middleware"
	"github.com/yigit/gtostat/internal/pkg/apperrors"
)

// GTOController handles GTO reports and achievement records
type GTOController struct {
	reportService      services.ReportService
	achievementService services.AchievementService
	reader             services.GTOReader
	logger             zerolog.Logger
}

// NewGTOController creates a new GTOController
func NewGTOController(
	reportService services.ReportService,
	achievementService services.AchievementService,
	reader services.GTOReader,
	logger zerolog.Logger,
) *GTOController {
	return &GTOController{
		reportService:      reportService,
		achievementService: achievementService,
		reader:             reader,
		logger:             logger,
	}
}

// parseScope reads institute_id, group_id and student_id from the query
func parseScope(ctx *gin.Context) (services.Scope, error) {
	var scope services.Scope
	var err error
	if scope.InstituteID, err = parseIDQuery(ctx, "institute_id"); err != nil {
		return scope, err
	}
	if scope.GroupID, err = parseIDQuery(ctx, "group_id"); err != nil {
		return scope, err
	}
	if scope.StudentID, err = parseIDQuery(ctx, "student_id"); err != nil {
		return scope, err
	}
	return scope, nil
}

// GetReport returns the GTO report of an institute
// @Summary Institute GTO report
// @Description Current-year level counts of the institute, global counts, per-level rank among institutes and level shares
// @Tags gto
// @Produce json
// @Security BearerAuth
// @Param institute_id query int true "Institute ID"
// @Success 200 {object} dto.APIResponse{data=models.InstituteReport}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /gto [get]
func (c *GTOController) GetReport(ctx *gin.Context) {
	instituteID, err := parseIDQuery(ctx, "institute_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if instituteID == 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("institute_id is required"))
		return
	}

	report, err := c.reportService.GetInstituteReport(ctx.Request.Context(), instituteID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// GetTally returns the current-year level counts of exactly one scope
// @Summary GTO tally
// @Tags gto
// @Produce json
// @Security BearerAuth
// @Param institute_id query int false "Institute ID"
// @Param group_id query int false "Group ID"
// @Param student_id query int false "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.TallyResponse}
// @Failure 400 {object} dto.ErrorResponse "Zero or several scope keys"
// @Failure 404 {object} dto.ErrorResponse
// @Router /gto/tally [get]
func (c *GTOController) GetTally(ctx *gin.Context) {
	scope, err := parseScope(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	tally, err := c.reader.Tally(ctx.Request.Context(), scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TallyResponse{
		Year:  c.reader.CurrentYear(),
		Tally: tally,
	}))
}

// RecordAchievement creates or replaces a student's level for the current year
// @Summary Record GTO level
// @Tags gto
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AchievementRequest true "Student and level"
// @Success 200 {object} dto.APIResponse{data=models.Achievement}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /gto [post]
func (c *GTOController) RecordAchievement(ctx *gin.Context) {
	var req dto.AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	achievement, err := c.achievementService.RecordAchievement(ctx.Request.Context(), req.StudentID, req.Level)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(achievement))
}

// UpdateAchievement changes a student's existing current-year level
// @Summary Update GTO level
// @Tags gto
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AchievementRequest true "Student and level"
// @Success 200 {object} dto.APIResponse{data=models.Achievement}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No record for the current year"
// @Router /gto [patch]
func (c *GTOController) UpdateAchievement(ctx *gin.Context) {
	var req dto.AchievementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	achievement, err := c.achievementService.UpdateAchievement(ctx.Request.Context(), req.StudentID, req.Level)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(achievement))
}

// recordKey reads the required student_id and the optional year, which defaults to the current one
func (c *GTOController) recordKey(ctx *gin.Context) (int64, int, error) {
	studentID, err := parseIDQuery(ctx, "student_id")
	if err != nil {
		return 0, 0, err
	}
	if studentID == 0 {
		return 0, 0, apperrors.NewValidationError("student_id is required")
	}

	year := c.reader.CurrentYear()
	if raw := ctx.Query("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return 0, 0, apperrors.NewValidationError("invalid year")
		}
	}
	return studentID, year, nil
}

// GetRecord returns a student's GTO record of one year
// @Summary Get GTO record
// @Tags gto
// @Produce json
// @Security BearerAuth
// @Param student_id query int true "Student ID"
// @Param year query int false "Year, current by default"
// @Success 200 {object} dto.APIResponse{data=models.Achievement}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No record for that year"
// @Router /gto/record [get]
func (c *GTOController) GetRecord(ctx *gin.Context) {
	studentID, year, err := c.recordKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	achievement, err := c.achievementService.GetAchievement(ctx.Request.Context(), studentID, year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(achievement))
}

// DeleteRecord removes a student's GTO record of one year
// @Summary Delete GTO record
// @Tags gto
// @Produce json
// @Security BearerAuth
// @Param student_id query int true "Student ID"
// @Param year query int false "Year, current by default"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "No record for that year"
// @Router /gto/record [delete]
func (c *GTOController) DeleteRecord(ctx *gin.Context) {
	studentID, year, err := c.recordKey(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.achievementService.DeleteAchievement(ctx.Request.Context(), studentID, year); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentID", studentID).Int("year", year).Msg("GTO record deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "GTO record deleted successfully"}))
}
