package api

import (
	"net/http"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	submissionService service.SubmissionService,
	verificationService service.VerificationService,
) {

	authHandler := NewAuthHandler(authService)
	certificateHandler := NewCertificateHandler(submissionService)
	adminHandler := NewAdminHandler(verificationService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.Use(RequestIDMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Certificate Routes ---
		// Submission is open to any authenticated user; ownership comes from
		// the token, not the payload.
		certificateGroup := protected.Group("/certificates")
		{
			// POST /api/v1/certificates - submit a credential
			certificateGroup.POST("", certificateHandler.SubmitCertificate)
			// GET /api/v1/certificates - own submissions, most recent first
			certificateGroup.GET("", certificateHandler.GetMyCertificates)
			// GET /api/v1/certificates/stats - own status counts
			certificateGroup.GET("/stats", certificateHandler.GetMyStats)
			// GET /api/v1/certificates/:id/file-url - temporary preview URL
			certificateGroup.GET("/:id/file-url", certificateHandler.GetFileURL)
		}

		// --- Admin Routes ---
		// All routes in this group require authentication AND the admin role.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			// GET /api/v1/admin/certificates?status= - review queue
			adminGroup.GET("/certificates", adminHandler.ListCertificates)
			// GET /api/v1/admin/stats - counts across all records
			adminGroup.GET("/stats", adminHandler.GetStats)
			// POST /api/v1/admin/certificates/:id/verify - approve/reject
			adminGroup.POST("/certificates/:id/verify", adminHandler.VerifyCertificate)
		}
	}
}
