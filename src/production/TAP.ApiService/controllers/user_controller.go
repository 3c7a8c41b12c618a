package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Logger"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
	interfaces "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Repository/Interfaces"
)

// UserController handles user display fields and the score board.
// Authentication lives elsewhere; this controller only keeps the
// records the tap core needs.
type UserController struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

// NewUserController creates a new user controller
func NewUserController(userRepo interfaces.UserRepository, logger *logger.Logger) *UserController {
	return &UserController{
		userRepo: userRepo,
		logger:   logger,
	}
}

// RegisterRoutes registers the user routes with Gin
func (c *UserController) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/users")
	{
		users.POST("", c.CreateUser)
		users.GET("", c.ListUsers)
		users.GET("/:user_id", c.GetUser)
	}
}

type createUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Credits  float64 `json:"credits"`
}

func (c *UserController) CreateUser(ctx *gin.Context) {
	var req createUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &tapmodels.User{
		Username: req.Username,
		Credits:  req.Credits,
	}
	user, err := c.userRepo.Create(ctx, user)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.userRepo.GetAll(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": users})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	userID := ctx.Param("user_id")

	user, err := c.userRepo.GetByID(ctx, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	ctx.JSON(http.StatusOK, user)
}
