package onboarding

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/trustgate/trustgate/internal/cases"
	"github.com/trustgate/trustgate/internal/pagination"
	"github.com/trustgate/trustgate/internal/validation"
)

// FraudAlertMessage is attached to verify responses whose assessment carries
// a behavioral signal.
const FraudAlertMessage = "Suspicious behavioral pattern detected"

// Handler exposes the onboarding pipeline over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates an onboarding HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the applicant-facing endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/profiles", h.SubmitProfile)
	r.POST("/otp/verify", h.VerifyOTP)
}

// RegisterAdminRoutes mounts the compliance endpoints. The group is expected
// to already carry admin authentication.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/cases", h.ListCases)
	r.POST("/cases/decision", h.DecideCase)
	r.GET("/audit", h.AuditTrail)
	r.GET("/analytics", h.Analytics)
}

type submitProfileRequest struct {
	Email    string            `json:"email"`
	Name     string            `json:"name"`
	IDNumber string            `json:"id_number"`
	Country  string            `json:"country"`
	Extra    map[string]string `json:"extra"`
}

// SubmitProfile handles POST /profiles.
func (h *Handler) SubmitProfile(c *gin.Context) {
	var req submitProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("email", req.Email),
		validation.ValidEmail("email", req.Email),
		validation.MaxLength("name", req.Name, validation.MaxStringLength),
		validation.MaxLength("id_number", req.IDNumber, validation.MaxStringLength),
		validation.MaxLength("country", req.Country, validation.MaxStringLength),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	err := h.svc.SubmitProfile(c.Request.Context(), Submission{
		Email:    req.Email,
		Name:     req.Name,
		IDNumber: req.IDNumber,
		Country:  req.Country,
		Extra:    req.Extra,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to process submission",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "otp_sent",
		"message": "OTP sent successfully",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP handles POST /otp/verify. A mismatch is a normal outcome, not an
// HTTP error; the response carries the running attempt count.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid JSON body",
		})
		return
	}

	if errs := validation.Validate(
		validation.Required("email", req.Email),
		validation.ValidEmail("email", req.Email),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	out, err := h.svc.VerifyAndEvaluate(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to evaluate submission",
		})
		return
	}

	if !out.Verified {
		c.JSON(http.StatusOK, gin.H{
			"status":   "failed",
			"message":  "Invalid OTP",
			"attempts": out.Attempts,
		})
		return
	}

	a := out.Assessment
	resp := gin.H{
		"status":           "success",
		"risk_score":       a.Score,
		"trust_index":      a.TrustIndex,
		"risk_category":    a.Tier,
		"confidence_score": a.Confidence,
		"signals":          a.Signals,
		"decision":         a.Decision,
		"account_status":   a.Status,
		"explanation":      a.Explanation,
		"audit_log":        out.AuditEntry,
	}
	if a.Suspicious {
		resp["fraud_alert"] = FraudAlertMessage
	}
	if out.Case != nil {
		resp["case_id"] = out.Case.ID
	}
	c.JSON(http.StatusOK, resp)
}

// ListCases handles GET /cases. The body is a map keyed by email.
func (h *Handler) ListCases(c *gin.Context) {
	all, err := h.svc.ListCases(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to list cases",
		})
		return
	}
	c.JSON(http.StatusOK, all)
}

type decisionRequest struct {
	Email  string `json:"email"`
	Action string `json:"action"`
}

// DecideCase handles POST /cases/decision.
func (h *Handler) DecideCase(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid JSON body",
		})
		return
	}
	if errs := validation.Validate(
		validation.Required("email", req.Email),
		validation.Required("action", req.Action),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	final, err := h.svc.DecideCase(c.Request.Context(), req.Email, cases.ParseAction(req.Action))
	if err != nil {
		if errors.Is(err, cases.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"updated": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to apply decision",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated":      true,
		"final_status": final,
	})
}

// AuditTrail handles GET /audit. Without a limit the full trail is returned
// in append order; with ?limit=N the response is a cursor page.
func (h *Handler) AuditTrail(c *gin.Context) {
	entries, err := h.svc.AuditTrail(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to read audit log",
		})
		return
	}

	limitStr := c.Query("limit")
	if limitStr == "" {
		c.JSON(http.StatusOK, entries)
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "limit must be a positive integer",
		})
		return
	}
	cur, err := pagination.Decode(c.Query("cursor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid cursor",
		})
		return
	}

	// The log is append-only and entry IDs carry no order, so the cursor
	// names the last entry served and the next page starts right after it.
	// An unknown cursor restarts from the top.
	start := 0
	if cur != nil {
		for i, e := range entries {
			if e.ID == cur.ID {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(entries) {
		end = len(entries)
	}
	page := entries[start:end]

	next := ""
	if end < len(entries) && len(page) > 0 {
		last := page[len(page)-1]
		next = pagination.Encode(last.Timestamp, last.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     page,
		"next_cursor": next,
	})
}

// Analytics handles GET /analytics.
func (h *Handler) Analytics(c *gin.Context) {
	summary, err := h.svc.Analytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to summarize audit log",
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}
