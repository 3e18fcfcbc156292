package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/middleware"
)

// ResultController serves the catalogue and student results of one result kind
type ResultController struct {
	resultService services.ResultService
	kind          models.ResultKind
}

// NewResultController creates a controller bound to kind
func NewResultController(resultService services.ResultService, kind models.ResultKind) *ResultController {
	return &ResultController{
		resultService: resultService,
		kind:          kind,
	}
}

// ListDefinitions returns the kind's catalogue
// @Summary List standards or theory tests
// @Tags results
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ResultDefinition}
// @Router /standard [get]
// @Router /theory [get]
func (c *ResultController) ListDefinitions(ctx *gin.Context) {
	defs, err := c.resultService.ListDefinitions(ctx.Request.Context(), c.kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(defs))
}

// CreateDefinition adds an entry to the kind's catalogue
// @Summary Create standard or theory test
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDefinitionRequest true "Name"
// @Success 201 {object} dto.APIResponse{data=models.ResultDefinition}
// @Failure 400 {object} dto.ErrorResponse
// @Router /standard [post]
// @Router /theory [post]
func (c *ResultController) CreateDefinition(ctx *gin.Context) {
	var req dto.CreateDefinitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	def, err := c.resultService.CreateDefinition(ctx.Request.Context(), c.kind, req.Name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(def))
}

// ListStudentResults returns one student's results of the kind
// @Summary List student results
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ResultRecord}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id}/standard-results [get]
// @Router /students/{id}/theory-results [get]
func (c *ResultController) ListStudentResults(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	records, err := c.resultService.ListResults(ctx.Request.Context(), c.kind, services.Scope{StudentID: studentID})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records))
}

// CreateResult stores a student's result
// @Summary Create student result
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.ResultRequest true "Result"
// @Success 201 {object} dto.APIResponse{data=models.ResultRecord}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Student or definition not found"
// @Router /students/{id}/standard-results [post]
// @Router /students/{id}/theory-results [post]
func (c *ResultController) CreateResult(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rec, err := c.resultService.CreateResult(ctx.Request.Context(), c.kind, &models.ResultRecord{
		StudentID:    studentID,
		DefinitionID: req.DefinitionID,
		Semester:     req.Semester,
		Value:        req.Result,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(rec))
}

// UpdateResult replaces a student's result
// @Summary Update student result
// @Tags results
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param rid path int true "Result ID"
// @Param request body dto.ResultRequest true "Result"
// @Success 200 {object} dto.APIResponse{data=models.ResultRecord}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id}/standard-results/{rid} [patch]
// @Router /students/{id}/theory-results/{rid} [patch]
func (c *ResultController) UpdateResult(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resultID, err := parseIDParam(ctx, "rid")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ResultRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	rec, err := c.resultService.UpdateResult(ctx.Request.Context(), c.kind, &models.ResultRecord{
		ID:           resultID,
		StudentID:    studentID,
		DefinitionID: req.DefinitionID,
		Semester:     req.Semester,
		Value:        req.Result,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(rec))
}

// DeleteResult removes a student's result
// @Summary Delete student result
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param rid path int true "Result ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id}/standard-results/{rid} [delete]
// @Router /students/{id}/theory-results/{rid} [delete]
func (c *ResultController) DeleteResult(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resultID, err := parseIDParam(ctx, "rid")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.resultService.DeleteResult(ctx.Request.Context(), c.kind, studentID, resultID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Result deleted successfully"}))
}

// ListScopeResults returns results of any kind within one scope
// @Summary List results by scope
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Result kind" Enums(gto, standard, theory)
// @Param institute_id query int false "Institute ID"
// @Param group_id query int false "Group ID"
// @Param student_id query int false "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ResultRecord}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /results/{kind} [get]
func ListScopeResults(resultService services.ResultService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		scope, err := parseScope(ctx)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}

		records, err := resultService.ListResults(ctx.Request.Context(), models.ResultKind(ctx.Param("kind")), scope)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(records))
	}
}
