package api

import (
	"errors"
	"net/http"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler holds the verification service dependency.
type AdminHandler struct {
	verificationService service.VerificationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(verificationService service.VerificationService) *AdminHandler {
	return &AdminHandler{verificationService: verificationService}
}

// --- DTOs for API ---

// VerifyCertificateRequest carries an admin decision.
type VerifyCertificateRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved rejected"`
	Comments string `json:"comments" binding:"omitempty"`
}

// --- Handler Methods ---

// ListCertificates godoc
// @Summary List all certificates (review queue)
// @Description Returns every certificate, most recent first. Optional ?status= filter.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter: all, pending, approved, rejected"
// @Success 200 {array} CertificateResponse
// @Failure 400 {object} gin.H "Invalid filter"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /admin/certificates [get]
func (h *AdminHandler) ListCertificates(c *gin.Context) {
	statusFilter := c.DefaultQuery("status", "all")
	switch statusFilter {
	case "all", string(domain.StatusPending), string(domain.StatusApproved), string(domain.StatusRejected):
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid status filter: must be all, pending, approved, or rejected")
		return
	}

	certs, err := h.verificationService.ListAll(c.Request.Context(), statusFilter)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch certificates")
		return
	}

	c.JSON(http.StatusOK, MapCertificatesToResponse(certs))
}

// GetStats godoc
// @Summary Status counts across all certificates
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.StatusCounts
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	counts, err := h.verificationService.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, counts)
}

// VerifyCertificate godoc
// @Summary Approve or reject a certificate
// @Description Applies an admin decision. A decided record may be re-verified; the new decision overwrites the old one.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Param decision body VerifyCertificateRequest true "Decision and optional comments"
// @Success 200 {object} CertificateResponse "Updated certificate"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden (not an admin)"
// @Failure 404 {object} gin.H "Certificate not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /admin/certificates/{id}/verify [post]
func (h *AdminHandler) VerifyCertificate(c *gin.Context) {
	var req VerifyCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	adminID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	certID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid certificate ID format.")
		return
	}

	cert, err := h.verificationService.Verify(
		c.Request.Context(),
		adminID,
		certID,
		domain.CertificateStatus(req.Decision),
		req.Comments,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCertificateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidDecision):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPersist):
			abortWithError(c, http.StatusInternalServerError, "Failed to save verification decision")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during verification")
		}
		return
	}

	c.JSON(http.StatusOK, MapCertificateToResponse(cert))
}
