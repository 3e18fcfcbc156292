package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/models"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/middleware"
	"github.com/yigit/gtostat/internal/pkg/helpers"
)

// InstituteController handles institute and group endpoints
type InstituteController struct {
	instituteService services.InstituteService
	groupService     services.GroupService
}

// NewInstituteController creates a new InstituteController
func NewInstituteController(instituteService services.InstituteService, groupService services.GroupService) *InstituteController {
	return &InstituteController{
		instituteService: instituteService,
		groupService:     groupService,
	}
}

// ListInstitutes returns a page of institutes
// @Summary List institutes
// @Tags institutes
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Institute}}
// @Router /institutes [get]
func (c *InstituteController) ListInstitutes(ctx *gin.Context) {
	skip, limit := helpers.ParseSkipLimit(ctx)

	institutes, total, err := c.instituteService.ListInstitutes(ctx.Request.Context(), services.ListParams{Skip: skip, Limit: limit})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse{
		Items:      institutes,
		Pagination: helpers.NewPaginationInfo(total, skip, limit),
	}))
}

// GetInstitute returns one institute
// @Summary Get institute
// @Tags institutes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Institute ID"
// @Success 200 {object} dto.APIResponse{data=models.Institute}
// @Failure 404 {object} dto.ErrorResponse
// @Router /institutes/{id} [get]
func (c *InstituteController) GetInstitute(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	institute, err := c.instituteService.GetInstitute(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(institute))
}

// CreateInstitute adds an institute
// @Summary Create institute
// @Tags institutes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInstituteRequest true "New institute"
// @Success 201 {object} dto.APIResponse{data=models.Institute}
// @Failure 400 {object} dto.ErrorResponse
// @Router /institutes [post]
func (c *InstituteController) CreateInstitute(ctx *gin.Context) {
	var req dto.CreateInstituteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	institute := &models.Institute{Name: req.Name}
	if err := c.instituteService.CreateInstitute(ctx.Request.Context(), institute); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(institute))
}

// ListGroups returns a page of groups filtered by institute and course
// @Summary List groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param institute_id query int false "Institute ID"
// @Param course query int false "Course"
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Group}}
// @Router /groups [get]
func (c *InstituteController) ListGroups(ctx *gin.Context) {
	instituteID, err := parseIDQuery(ctx, "institute_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	course, err := parseIDQuery(ctx, "course")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	skip, limit := helpers.ParseSkipLimit(ctx)

	groups, total, err := c.groupService.ListGroups(ctx.Request.Context(), services.GroupListParams{
		InstituteID: instituteID,
		Course:      int(course),
		ListParams:  services.ListParams{Skip: skip, Limit: limit},
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse{
		Items:      groups,
		Pagination: helpers.NewPaginationInfo(total, skip, limit),
	}))
}

// GetGroup returns one group with its institute
// @Summary Get group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=models.Group}
// @Failure 404 {object} dto.ErrorResponse
// @Router /groups/{id} [get]
func (c *InstituteController) GetGroup(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	group, err := c.groupService.GetGroup(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(group))
}

// CreateGroup adds a group to an institute
// @Summary Create group
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGroupRequest true "New group"
// @Success 201 {object} dto.APIResponse{data=models.Group}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Institute not found"
// @Failure 409 {object} dto.ErrorResponse "Group name taken"
// @Router /groups [post]
func (c *InstituteController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	group := &models.Group{Name: req.Name, Course: req.Course, InstituteID: req.InstituteID}
	if err := c.groupService.CreateGroup(ctx.Request.Context(), group); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(group))
}
