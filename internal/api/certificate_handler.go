package api

import (
	"errors"
	"net/http"
	"time"

	"edvault/cert-portal/internal/domain"
	"edvault/cert-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form date layout for issue/expiry dates.
const dateLayout = "2006-01-02"

// CertificateHandler holds the submission service dependency.
type CertificateHandler struct {
	submissionService service.SubmissionService
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(submissionService service.SubmissionService) *CertificateHandler {
	return &CertificateHandler{submissionService: submissionService}
}

// --- DTOs for API ---

// SubmitCertificateRequest defines the multipart form fields for a submission.
// The certificate file itself arrives as the "file" form part.
type SubmitCertificateRequest struct {
	CertificateName string `form:"certificateName" binding:"required"`
	CertificateType string `form:"certificateType" binding:"required,oneof=degree diploma course professional skill other"`
	Institution     string `form:"institution" binding:"required"`
	IssueDate       string `form:"issueDate" binding:"required"`
	ExpiryDate      string `form:"expiryDate" binding:"omitempty"`
	Grade           string `form:"grade" binding:"omitempty"`
}

// CertificateResponse is the DTO for returning certificate details.
type CertificateResponse struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"studentId"`
	StudentName     string     `json:"studentName"`
	StudentEmail    string     `json:"studentEmail"`
	CertificateName string     `json:"certificateName"`
	CertificateType string     `json:"certificateType"`
	Institution     string     `json:"institution"`
	IssueDate       time.Time  `json:"issueDate"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	Grade           string     `json:"grade,omitempty"`
	FileURL         string     `json:"fileUrl"`
	FileName        string     `json:"fileName"`
	Status          string     `json:"status"`
	AdminComments   string     `json:"adminComments,omitempty"`
	VerifiedBy      *string    `json:"verifiedBy,omitempty"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	SubmittedAt     time.Time  `json:"submittedAt"`
}

// MapCertificateToResponse converts a domain.Certificate to CertificateResponse DTO.
func MapCertificateToResponse(cert *domain.Certificate) CertificateResponse {
	if cert == nil {
		return CertificateResponse{}
	}
	resp := CertificateResponse{
		ID:              cert.ID.Hex(),
		StudentID:       cert.StudentID.Hex(),
		StudentName:     cert.StudentName,
		StudentEmail:    cert.StudentEmail,
		CertificateName: cert.CertificateName,
		CertificateType: string(cert.CertificateType),
		Institution:     cert.Institution,
		IssueDate:       cert.IssueDate,
		ExpiryDate:      cert.ExpiryDate,
		Grade:           cert.Grade,
		FileURL:         cert.FileURL,
		FileName:        cert.FileName,
		Status:          string(cert.Status),
		AdminComments:   cert.AdminComments,
		VerifiedAt:      cert.VerifiedAt,
		SubmittedAt:     cert.SubmittedAt,
	}
	if cert.VerifiedBy != nil && *cert.VerifiedBy != primitive.NilObjectID {
		verifiedByHex := cert.VerifiedBy.Hex()
		resp.VerifiedBy = &verifiedByHex
	}
	return resp
}

// MapCertificatesToResponse converts a slice of domain.Certificate to DTOs.
func MapCertificatesToResponse(certs []domain.Certificate) []CertificateResponse {
	responses := make([]CertificateResponse, len(certs))
	for i, cert := range certs {
		responses[i] = MapCertificateToResponse(&cert)
	}
	return responses
}

// --- Handler Methods ---

// SubmitCertificate godoc
// @Summary Submit a certificate
// @Description Uploads a credential file and creates a pending certificate record.
// @Tags Certificates
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param certificateName formData string true "Certificate name"
// @Param certificateType formData string true "Certificate type"
// @Param institution formData string true "Issuing institution"
// @Param issueDate formData string true "Issue date (YYYY-MM-DD)"
// @Param expiryDate formData string false "Expiry date (YYYY-MM-DD)"
// @Param grade formData string false "Grade"
// @Param file formData file true "Certificate file (PDF, JPG, PNG)"
// @Success 201 {object} CertificateResponse "Certificate submitted"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /certificates [post]
func (h *CertificateHandler) SubmitCertificate(c *gin.Context) {
	var req SubmitCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	studentID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	issueDate, err := time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid issueDate, expected YYYY-MM-DD")
		return
	}
	var expiryDate *time.Time
	if req.ExpiryDate != "" {
		parsed, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid expiryDate, expected YYYY-MM-DD")
			return
		}
		expiryDate = &parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Certificate file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	cert, err := h.submissionService.Submit(c.Request.Context(), studentID, service.SubmissionInput{
		CertificateName: req.CertificateName,
		CertificateType: domain.CertificateType(req.CertificateType),
		Institution:     req.Institution,
		IssueDate:       issueDate,
		ExpiryDate:      expiryDate,
		Grade:           req.Grade,
		FileName:        fileHeader.Filename,
		ContentType:     fileHeader.Header.Get("Content-Type"),
		File:            file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUpload):
			abortWithError(c, http.StatusBadGateway, "Failed to upload certificate file")
		case errors.Is(err, service.ErrPersist):
			abortWithError(c, http.StatusInternalServerError, "Failed to save certificate")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during submission")
		}
		return
	}

	c.JSON(http.StatusCreated, MapCertificateToResponse(cert))
}

// GetMyCertificates godoc
// @Summary List own certificates
// @Description Returns the authenticated user's certificates, most recent first.
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CertificateResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /certificates [get]
func (h *CertificateHandler) GetMyCertificates(c *gin.Context) {
	studentID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	certs, err := h.submissionService.ListMine(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch certificates")
		return
	}

	c.JSON(http.StatusOK, MapCertificatesToResponse(certs))
}

// GetMyStats godoc
// @Summary Dashboard stats for own certificates
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.StatusCounts
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /certificates/stats [get]
func (h *CertificateHandler) GetMyStats(c *gin.Context) {
	studentID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	certs, err := h.submissionService.ListMine(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to fetch certificates")
		return
	}

	c.JSON(http.StatusOK, domain.CountsByStatus(certs))
}

// GetFileURL godoc
// @Summary Temporary preview URL for a certificate file
// @Description Returns a short-lived download URL. Owner or admin only.
// @Tags Certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} gin.H "{"url": "..."}"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 404 {object} gin.H "Not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /certificates/{id}/file-url [get]
func (h *CertificateHandler) GetFileURL(c *gin.Context) {
	requesterID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify role from token.")
		return
	}

	certID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid certificate ID format.")
		return
	}

	url, err := h.submissionService.FileDownloadURL(c.Request.Context(), requesterID, role, certID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCertificateNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCertificateAccess):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate file URL")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// objectIDFromToken extracts the authenticated user's ObjectID, writing the
// error response itself when extraction fails.
func objectIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
