package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-intake/internal/sessions"
	"referral-intake/internal/shared/metrics"
	"referral-intake/internal/shared/server/respond"
	"referral-intake/internal/shared/telemetry"
	"referral-intake/internal/shared/util"
)

// Handler exposes login, logout and session status.
type Handler struct {
	Svc      *Service
	Sessions *sessions.Manager
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, mgr *sessions.Manager) *Handler {
	return &Handler{Svc: svc, Sessions: mgr}
}

// RegisterRoutes attaches auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/session", h.status)
}

type loginRequest struct {
	Username string `json:"usuario" form:"usuario"`
	Password string `json:"senha" form:"senha"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Corpo da requisição inválido", nil)
		return
	}

	if err := h.Svc.Check(req.Username, req.Password); err != nil {
		metrics.IncLogin(false)
		telemetry.Warn("auth.login_failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"client_ip":  c.ClientIP(),
			"user_hash":  util.Fingerprint(req.Username),
		})
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Usuário ou senha inválidos", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Erro ao autenticar", nil)
		return
	}

	if err := h.Sessions.Authenticate(c, req.Username); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Erro ao criar sessão", nil)
		return
	}
	metrics.IncLogin(true)
	telemetry.Info("auth.login_succeeded", map[string]any{
		"request_id": c.GetString("requestId"),
		"client_ip":  c.ClientIP(),
	})
	respond.OK(c, "Login efetuado com sucesso", gin.H{"authenticated": true})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Sessions.Destroy(c); err != nil {
		telemetry.Error("session.destroy_failed", map[string]any{
			"request_id": c.GetString("requestId"),
			"error":      err.Error(),
		})
	}
	respond.OK(c, "Logout efetuado com sucesso", nil)
}

func (h *Handler) status(c *gin.Context) {
	s, ok := h.Sessions.Current(c)
	respond.OK(c, "Sessão verificada", gin.H{"authenticated": ok && s.Authenticated})
}
