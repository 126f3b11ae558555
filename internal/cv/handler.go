package cv

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/metrics"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server/middleware"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server/respond"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/storage/object"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires CV HTTP routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches CV routes to the router group. Candidate routes
// require the VERIFIED_CANDIDATE role; the recruiter route trusts the
// INTERNAL_SERVICE role alone and performs no per-record ownership check.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	candidate := middleware.RequireRole(middleware.RoleVerifiedCandidate)
	internal := middleware.RequireRole(middleware.RoleInternalService)

	grp := rg.Group("/cv")
	grp.POST("/upload", candidate, h.upload)
	grp.GET("/info", candidate, h.list)
	grp.GET("/:cvId/candidate", candidate, h.candidateURL)
	grp.GET("/:cvId/recruiter", internal, h.recruiterURL)
	grp.DELETE("/:isMain", candidate, h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	callerID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("cv")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, codeValidation, "cv file is required", nil)
		return
	}
	isMain, ok := parseBool(c.PostForm("isMain"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, codeValidation, "isMain must be a boolean", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, codeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, codeValidation, "unable to read file", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := ValidateUpload(fileHeader.Filename, contentType, data); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.Error(c, http.StatusBadRequest, verr.Code, verr.Message, nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return
	}

	metrics.IncUploadStarted()
	started := metrics.NowMillis()
	err = h.Svc.Upload(c.Request.Context(), callerID, UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Content:     bytes.NewReader(data),
		IsMain:      isMain,
	})
	metrics.ObserveUploadDurationMs(metrics.NowMillis() - started)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) candidateURL(c *gin.Context) {
	callerID := middleware.UserIDFromContext(c)
	cvID := c.Param("cvId")
	isMain, ok := parseBool(c.Query("isMain"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, codeValidation, "isMain must be a boolean", nil)
		return
	}

	link, err := h.Svc.CandidateURL(c.Request.Context(), callerID, cvID, isMain)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.String(http.StatusOK, link)
}

func (h *Handler) recruiterURL(c *gin.Context) {
	link, err := h.Svc.RecruiterURL(c.Request.Context(), c.Param("cvId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.String(http.StatusOK, link)
}

func (h *Handler) list(c *gin.Context) {
	callerID := middleware.UserIDFromContext(c)
	sums, err := h.Svc.List(c.Request.Context(), callerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toSummaryResponse(sums))
}

// remove deletes the caller's slot. The path parameter is the slot flag,
// matching the upload's isMain semantics.
func (h *Handler) remove(c *gin.Context) {
	callerID := middleware.UserIDFromContext(c)
	isMain, ok := parseBool(c.Param("isMain"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, codeValidation, "path must be a boolean slot flag", nil)
		return
	}

	if err := h.Svc.Remove(c.Request.Context(), callerID, isMain); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var uploadErr *UploadError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, codeValidation, ErrInvalidInput.Error(), nil)
	case errors.Is(err, ErrNotApproved):
		respond.Error(c, http.StatusForbidden, codeNotApproved, ErrNotApproved.Error(), nil)
	case errors.Is(err, ErrQuotaExceeded):
		respond.Error(c, http.StatusConflict, codeQuotaExceeded, ErrQuotaExceeded.Error(), nil)
	case errors.Is(err, ErrPermissionDenied):
		respond.Error(c, http.StatusForbidden, codePermissionDenied, ErrPermissionDenied.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, codeNotFound, ErrNotFound.Error(), nil)
	case object.IsStorage(err):
		respond.Error(c, http.StatusBadGateway, codeStorage, "object store unavailable", nil)
	case errors.As(err, &uploadErr):
		respond.Error(c, http.StatusInternalServerError, codeUploadFailed, uploadErr.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
	}
}

func parseBool(raw string) (bool, bool) {
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return val, true
}
