package referrals

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"referral-intake/internal/shared/server/respond"
)

const (
	defaultMaxUploadSize = 10 << 20 // 10MB
	maxMemory            = 8 << 20
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterPublicRoutes attaches the submission form endpoint.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/submit", h.submit)
}

// RegisterAdminRoutes attaches the administrator endpoints. The caller is
// responsible for guarding rg with a session check.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	for _, base := range []string{"/referrals", "/indicacoes"} {
		rg.GET(base, h.list)
		rg.GET(base+"/:id", h.get)
		rg.PUT(base+"/:id/status", h.updateStatus)
		rg.DELETE(base+"/:id", h.delete)
	}
	rg.GET("/download/:id", h.download)
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	if err := c.Request.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Arquivo excede o tamanho máximo permitido", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "Formulário inválido", nil)
		return
	}
	if c.Request.MultipartForm != nil {
		defer func() { _ = c.Request.MultipartForm.RemoveAll() }()
	}

	sub := Submission{
		Name:     c.PostForm("nome"),
		Phone:    c.PostForm("telefone"),
		Position: c.PostForm("posto"),
		Consent:  ConsentFromForm(c.PostForm("regras")),
	}

	fileHeader, err := c.FormFile("curriculo")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Não foi possível ler o currículo", nil)
			return
		}
		defer file.Close()
		sub.Resume = &Upload{FileName: fileHeader.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "Não foi possível ler o currículo", nil)
		return
	}

	ref, err := h.Svc.Submit(c.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Erro no envio da indicação", nil)
		}
		return
	}

	c.Set("referralId", ref.ID)
	respond.JSON(c, http.StatusCreated, "Indicação criada com sucesso", toResponse(ref))
}

func (h *Handler) list(c *gin.Context) {
	refs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Erro ao buscar indicações", nil)
		return
	}
	respond.OK(c, "Indicações carregadas", toResponses(refs))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("referralId", id)

	ref, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeLookupError(c, err, "Erro ao buscar indicação")
		return
	}
	respond.OK(c, "Indicação carregada", toResponse(ref))
}

func (h *Handler) updateStatus(c *gin.Context) {
	id := c.Param("id")
	c.Set("referralId", id)

	var req statusRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Corpo da requisição inválido", nil)
		return
	}

	if err := h.Svc.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			h.writeLookupError(c, err, "Erro ao atualizar status.")
		}
		return
	}
	respond.OK(c, "Status atualizado com sucesso.", nil)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	c.Set("referralId", id)

	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.writeLookupError(c, err, "Erro ao excluir indicação.")
		return
	}
	respond.OK(c, "Indicação excluída com sucesso.", nil)
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")
	c.Set("referralId", id)

	reader, fileName, err := h.Svc.OpenResume(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrResumeMissing):
			respond.Error(c, http.StatusNotFound, "not_found", "Currículo não encontrado", nil)
		default:
			h.writeLookupError(c, err, "Erro interno")
		}
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if disposition == "" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *Handler) writeLookupError(c *gin.Context, err error, internalMessage string) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "Indicação não encontrada", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "storage_error", internalMessage, nil)
}
