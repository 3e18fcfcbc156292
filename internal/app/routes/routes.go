package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/controllers"
	"github.com/yigit/gtostat/internal/app/models/dto"
	"github.com/yigit/gtostat/internal/middleware"
)

// Controllers groups every controller the router needs
type Controllers struct {
	Auth      *controllers.AuthController
	User      *controllers.UserController
	Institute *controllers.InstituteController
	Student   *controllers.StudentController
	GTO       *controllers.GTOController
	// Results holds one controller per enabled table-backed kind, keyed by its path segment
	Results map[string]*controllers.ResultController
	// ScopeResults lists any kind of results within one scope
	ScopeResults gin.HandlerFunc
	// GTOLive upgrades to the live achievement feed
	GTOLive gin.HandlerFunc
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/login/access-token", c.Auth.Login)
	v1.POST("/reset-password", c.Auth.ResetPassword)
	v1.POST("/users/open", c.User.RegisterOpen)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.TokenAuth())

	authenticated.POST("/login/test-token", c.Auth.TestToken)
	authenticated.POST("/logout", c.Auth.Logout)

	users := authenticated.Group("/users")
	{
		users.GET("", c.User.ListUsers)
		users.GET("/me", c.User.GetMe)
		users.PATCH("/me", c.User.UpdateMe)
		users.PATCH("/me/password", c.User.ChangePassword)
		users.GET("/:id", c.User.GetUser)

		admin := users.Group("")
		admin.Use(authMiddleware.RequireSuperuser())
		{
			admin.POST("", c.User.CreateUser)
			admin.PATCH("/:id", c.User.UpdateUser)
			admin.DELETE("/:id", c.User.DeleteUser)
		}
	}

	institutes := authenticated.Group("/institutes")
	{
		institutes.GET("", c.Institute.ListInstitutes)
		institutes.GET("/:id", c.Institute.GetInstitute)
		institutes.POST("", c.Institute.CreateInstitute)
	}

	groups := authenticated.Group("/groups")
	{
		groups.GET("", c.Institute.ListGroups)
		groups.GET("/:id", c.Institute.GetGroup)
		groups.POST("", c.Institute.CreateGroup)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", c.Student.ListStudents)
		students.GET("/:id", c.Student.GetStudent)
		students.POST("", c.Student.CreateStudent)
		students.PATCH("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)
	}

	gto := authenticated.Group("/gto")
	{
		gto.GET("", c.GTO.GetReport)
		gto.GET("/tally", c.GTO.GetTally)
		gto.POST("", c.GTO.RecordAchievement)
		gto.PATCH("", c.GTO.UpdateAchievement)
		gto.GET("/record", c.GTO.GetRecord)
		gto.DELETE("/record", c.GTO.DeleteRecord)
		if c.GTOLive != nil {
			gto.GET("/ws", c.GTOLive)
		}
	}

	// --- Per-kind result routes ---
	for segment, rc := range c.Results {
		catalogue := authenticated.Group("/" + segment)
		catalogue.GET("", rc.ListDefinitions)
		catalogue.POST("", rc.CreateDefinition)

		results := students.Group("/:id/" + segment + "-results")
		results.GET("", rc.ListStudentResults)
		results.POST("", rc.CreateResult)
		results.PATCH("/:rid", rc.UpdateResult)
		results.DELETE("/:rid", rc.DeleteResult)
	}

	if c.ScopeResults != nil {
		authenticated.GET("/results/:kind", c.ScopeResults)
	}
}
