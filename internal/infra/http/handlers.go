package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"signet/internal/domain"
	"signet/internal/usecase"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type registerPrincipalRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type principalResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PublicKeyPEM string    `json:"public_key"`
	CreatedAt    time.Time `json:"created_at"`
}

type signTextRequest struct {
	PrincipalID string `json:"principal_id"`
	Text        string `json:"text"`
}

type signTextResponse struct {
	PrincipalID string `json:"principal_id"`
	Signature   string `json:"signature"`
	Algorithm   string `json:"algorithm"`
}

type signMessageRequest struct {
	PrincipalID string `json:"principal_id"`
	Content     string `json:"content"`
}

type messageResponse struct {
	ID          string    `json:"id"`
	SignatoryID string    `json:"signatory_id"`
	Content     string    `json:"content"`
	Signature   string    `json:"signature"`
	Timestamp   time.Time `json:"timestamp"`
}

type verifyRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Status         string     `json:"status"`
	SignatoryID    string     `json:"signatory_id,omitempty"`
	SignatoryEmail string     `json:"signatory_email,omitempty"`
	MessageID      string     `json:"message_id,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
	Algorithm      string     `json:"algorithm,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Code           string     `json:"code,omitempty"`
	Message        string     `json:"message,omitempty"`
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func (s *Server) handleRegisterPrincipal(c *gin.Context) {
	var req registerPrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	principal, err := s.register.Execute(c.Request.Context(), usecase.RegisterPrincipalRequest{
		Email: req.Email,
		Name:  req.Name,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildPrincipalResponse(principal))
}

func (s *Server) handleGetPrincipal(c *gin.Context) {
	principal, err := s.principals.Execute(c.Request.Context(), c.Param("principal_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildPrincipalResponse(principal))
}

func (s *Server) handleSignText(c *gin.Context) {
	var req signTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.PrincipalID == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "principal_id is required")
		return
	}
	sig, err := s.signText.Execute(c.Request.Context(), req.PrincipalID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, signTextResponse{
		PrincipalID: req.PrincipalID,
		Signature:   sig,
		Algorithm:   domain.SignatureAlgorithm,
	})
}

func (s *Server) handleSignMessage(c *gin.Context) {
	var req signMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	msg, err := s.signMessage.Execute(c.Request.Context(), req.PrincipalID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, buildMessageResponse(msg))
}

func (s *Server) handleGetMessage(c *gin.Context) {
	msg, err := s.messages.Execute(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildMessageResponse(msg))
}

func (s *Server) handleVerifyQuery(c *gin.Context) {
	s.verify(c, usecase.VerifyRequest{
		MessageID: c.Query("id"),
		Text:      c.Query("text"),
		Signature: c.Query("signature"),
	})
}

func (s *Server) handleVerifyBody(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	s.verify(c, usecase.VerifyRequest{
		MessageID: req.ID,
		Text:      req.Text,
		Signature: req.Signature,
	})
}

// verify answers with a verdict body for every outcome. Failures keep the
// error envelope's code and message alongside an INVALID status.
func (s *Server) verify(c *gin.Context, req usecase.VerifyRequest) {
	result, err := s.verifier.Verify(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		status, code, message := classifyError(err)
		verdict := invalidVerdict("")
		verdict.Code, verdict.Message = code, message
		switch {
		case errors.Is(err, domain.ErrDecode):
			verdict.Reason = domain.ReasonMalformedSignature
		case errors.Is(err, domain.ErrMessageNotFound):
			verdict.Reason = domain.ReasonMessageNotFound
		}
		c.JSON(status, verdict)
		return
	}
	status := http.StatusOK
	if result.Reason == domain.ReasonInsufficientParameters {
		status = http.StatusBadRequest
	}
	c.JSON(status, buildVerifyResponse(result))
}

func (s *Server) handleVerifyAuditChain(c *gin.Context) {
	if s.auditLog == nil {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "audit log not configured")
		return
	}
	if err := usecase.VerifyAuditChain(c.Request.Context(), s.auditLog); err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			writeError(c, err)
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusConflict, gin.H{"status": "broken", "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dropped": s.audit.Dropped()})
}

func buildPrincipalResponse(p domain.Principal) principalResponse {
	view := p.PublicView()
	return principalResponse{
		ID:           view.ID,
		Email:        view.Email,
		Name:         view.Name,
		PublicKeyPEM: view.PublicKeyPEM,
		CreatedAt:    view.CreatedAt.UTC(),
	}
}

func buildMessageResponse(msg domain.SignedMessage) messageResponse {
	return messageResponse{
		ID:          msg.ID,
		SignatoryID: msg.SignatoryID,
		Content:     msg.Content,
		Signature:   msg.Signature,
		Timestamp:   msg.Timestamp.UTC(),
	}
}

func buildVerifyResponse(result domain.VerifyResult) verifyResponse {
	return verifyResponse{
		Status:         string(result.Status),
		SignatoryID:    result.SignatoryID,
		SignatoryEmail: result.SignatoryEmail,
		MessageID:      result.MessageID,
		Timestamp:      result.Timestamp,
		Algorithm:      result.Algorithm,
		Reason:         result.Reason,
	}
}

func invalidVerdict(reason string) verifyResponse {
	return verifyResponse{Status: string(domain.VerifyStatusInvalid), Reason: reason}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code, message := classifyError(err)
	writeErrorCode(c, status, code, message)
}

func classifyError(err error) (int, string, string) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrInvalidEmail):
		status, code = http.StatusBadRequest, "INVALID_EMAIL"
	case errors.Is(err, domain.ErrDecode):
		status, code = http.StatusBadRequest, "MALFORMED_SIGNATURE"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		status, code = http.StatusNotFound, "PRINCIPAL_NOT_FOUND"
	case errors.Is(err, domain.ErrMessageNotFound):
		status, code = http.StatusNotFound, "MESSAGE_NOT_FOUND"
	case errors.Is(err, domain.ErrPrincipalExists):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, domain.ErrMissingKey):
		status, code = http.StatusUnprocessableEntity, "MISSING_KEY"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	case errors.Is(err, domain.ErrInvalidKeyMaterial):
		status, code = http.StatusInternalServerError, "INVALID_KEY_MATERIAL"
	case errors.Is(err, domain.ErrKeyGeneration):
		status, code = http.StatusInternalServerError, "KEY_GENERATION_FAILED"
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	return status, code, message
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
	})
}
