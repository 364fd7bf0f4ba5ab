package handlers

import (
	"fmt"
	"net/http"

	"timeclock/internal/api/middleware"
	"timeclock/internal/config"
	"timeclock/internal/models"
	"timeclock/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
	cfg          *config.Config
}

func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type QuickLoginRequest struct {
	PIN string `json:"pin" binding:"required,len=4,numeric"`
}

type AddAdminRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=4"`
}

// Login handles admin login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if !h.startSession(c, admin.Username) {
		return
	}
	logAudit(c, h.auditService, "login", "admin", admin.Username, "")

	c.JSON(200, gin.H{"success": true, "username": admin.Username})
}

// QuickAdminLogin opens an admin session for an employee tagged Admin.
func (h *AuthHandler) QuickAdminLogin(c *gin.Context) {
	var req QuickLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	employee, err := h.authService.AuthenticatePIN(c.Request.Context(), req.PIN)
	if err != nil {
		respondError(c, err)
		return
	}

	subject := "employee:" + employee.PIN
	if !h.startSession(c, subject) {
		return
	}
	logAudit(c, h.auditService, "quick_login", "employee", employee.PIN, employee.Name)

	c.JSON(200, gin.H{"success": true, "name": employee.Name})
}

// Logout ends the current session. It succeeds without one.
func (h *AuthHandler) Logout(c *gin.Context) {
	if value, ok := c.Get(middleware.ContextSession); ok {
		sess := value.(*models.Session)
		if err := h.authService.DeleteSession(c.Request.Context(), sess.Token); err != nil {
			c.JSON(500, gin.H{"error": "Failed to logout"})
			return
		}
		logAudit(c, h.auditService, "logout", "admin", sess.Subject, "")
	}

	h.clearCookie(c)
	c.JSON(200, gin.H{"success": true})
}

// IsLoggedIn reports whether the request carries an admin session.
func (h *AuthHandler) IsLoggedIn(c *gin.Context) {
	resp := gin.H{"isLoggedIn": false}
	if value, ok := c.Get(middleware.ContextSession); ok {
		sess := value.(*models.Session)
		resp["isLoggedIn"] = sess.Admin
		resp["subject"] = sess.Subject
	}

	needsSetup, err := h.authService.NeedsSetup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp["needsSetup"] = needsSetup
	c.JSON(200, resp)
}

// AddAdmin creates an admin account. The first account may be created
// without a session; after that an admin session is required.
func (h *AuthHandler) AddAdmin(c *gin.Context) {
	needsSetup, err := h.authService.NeedsSetup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if !needsSetup && !middleware.IsAdmin(c) {
		c.JSON(403, gin.H{"error": "Admin privileges required"})
		return
	}

	var req AddAdminRequest
	if !bindJSON(c, &req) {
		return
	}

	admin, err := h.authService.CreateAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	logAudit(c, h.auditService, "create", "admin", admin.Username, "")

	// the bootstrap account is logged straight in
	if needsSetup && !h.startSession(c, admin.Username) {
		return
	}
	c.JSON(201, gin.H{"id": admin.ID, "username": admin.Username})
}

func (h *AuthHandler) startSession(c *gin.Context, subject string) bool {
	session, err := h.authService.CreateSession(c.Request.Context(), subject)
	if err != nil {
		respondError(c, fmt.Errorf("failed to create session: %w", err))
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, session.Token, int(h.authService.SessionTTL().Seconds()), "/", "", h.cfg.Session.Secure, true)
	c.Set(middleware.ContextActor, subject)
	return true
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.Secure, true)
}
