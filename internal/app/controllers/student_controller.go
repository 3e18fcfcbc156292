package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/middleware"
	"github.com/yigit/gtostat/internal/pkg/helpers"
)

// StudentController handles student endpoints
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents returns a page of students
// @Summary List students
// @Description Filter by institute, group, or by "First Last" name within a group
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param institute_id query int false "Institute ID"
// @Param group_id query int false "Group ID"
// @Param name query string false "First and last name, requires group_id"
// @Param skip query int false "Items to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse{items=[]models.Student}}
// @Failure 400 {object} dto.ErrorResponse
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	instituteID, err := parseIDQuery(ctx, "institute_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	groupID, err := parseIDQuery(ctx, "group_id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	skip, limit := helpers.ParseSkipLimit(ctx)

	students, total, err := c.studentService.ListStudents(ctx.Request.Context(), services.StudentListParams{
		InstituteID: instituteID,
		GroupID:     groupID,
		FullName:    ctx.Query("name"),
		ListParams:  services.ListParams{Skip: skip, Limit: limit},
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse{
		Items:      students,
		Pagination: helpers.NewPaginationInfo(total, skip, limit),
	}))
}

// GetStudent returns one student with group and institute
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student))
}

// CreateStudent adds a student. Institute and course come from the group.
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "New student"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Group not found"
// @Failure 409 {object} dto.ErrorResponse "Email or phone taken"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	student, err := req.ToModel()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.CreateStudent(ctx.Request.Context(), student); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student))
}

// UpdateStudent changes fields of a student
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	birthDate, err := req.BirthDateValue()
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, services.StudentPatch{
		GroupID:       req.GroupID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Patronymic:    req.Patronymic,
		BirthDate:     birthDate,
		BirthPlace:    req.BirthPlace,
		Sex:           req.Sex,
		MedicalGroup:  req.MedicalGroup,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
		AdmissionYear: req.AdmissionYear,
		Height:        req.Height,
		Weight:        req.Weight,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student))
}

// DeleteStudent removes a student
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Student deleted successfully"}))
}
