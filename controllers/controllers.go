package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"

	"scipost-api/config"
	"scipost-api/services"

	"github.com/gin-gonic/gin"
)

// Services are created lazily so config.DB exists before the first request.
// The catalog service must be a singleton: it caches the compiled DOI
// dispatch pattern.
var (
	servicesOnce  sync.Once
	workflowSvc   *services.EditorialWorkflowService
	refereeingSvc *services.RefereeingService
	intakeSvc     *services.IntakeService
	catalogSvc    *services.JournalCatalogService
	threadSvc     *services.ThreadService
	depositSvc    *services.DepositService
)

func initServices() {
	servicesOnce.Do(func() {
		workflowSvc = services.NewEditorialWorkflowService(config.DB)
		refereeingSvc = services.NewRefereeingService(config.DB)
		intakeSvc = services.NewIntakeService(config.DB)
		catalogSvc = services.NewJournalCatalogService(config.DB)
		threadSvc = services.NewThreadService(config.DB)
		depositSvc = services.NewDepositService(config.DB)
	})
}

func workflow() *services.EditorialWorkflowService {
	initServices()
	return workflowSvc
}

func refereeing() *services.RefereeingService {
	initServices()
	return refereeingSvc
}

func intake() *services.IntakeService {
	initServices()
	return intakeSvc
}

func catalog() *services.JournalCatalogService {
	initServices()
	return catalogSvc
}

func threads() *services.ThreadService {
	initServices()
	return threadSvc
}

func deposits() *services.DepositService {
	initServices()
	return depositSvc
}

// currentUserID reads the authenticated user from the context set by
// middleware.AuthMiddleware.
func currentUserID(c *gin.Context) int {
	id, _ := c.Get("userID")
	userID, _ := id.(int)
	return userID
}

func currentRoleID(c *gin.Context) int {
	id, _ := c.Get("roleID")
	roleID, _ := id.(int)
	return roleID
}

// intParam parses a numeric path parameter, answering 400 itself on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return value, true
}

// respondServiceError maps service errors to HTTP statuses: validation
// failures to 400 with field details, ErrNotFound to 404, ErrForbidden to
// 403, transition and precondition violations to 409.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationResult
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors":   validation.Errors,
			"warnings": validation.Warnings,
		})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrPrecondition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
