package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrrjunior25/PDV-master-sub000/internal/apierror"
	"github.com/jrrjunior25/PDV-master-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type BackupHandler struct{ svc service.BackupService }

func NewBackupHandler(svc service.BackupService) *BackupHandler { return &BackupHandler{svc: svc} }

// Exportar godoc
// @Summary      Exportar snapshot completo
// @Tags         backup
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} repository.Snapshot
// @Router       /v1/backup [get]
func (h *BackupHandler) Exportar(c *gin.Context) {
	snap, err := h.svc.Exportar(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=backup.json")
	c.JSON(http.StatusOK, snap)
}

// Importar godoc
// @Summary      Restaurar snapshot
// @Description  Substitui todas as coleções pelo conteúdo do snapshot. Falha sem gravar nada se a coleção de produtos estiver ausente.
// @Tags         backup
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      422 {object} apierror.APIError
// @Router       /v1/backup [post]
func (h *BackupHandler) Importar(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("corpo ilegível"))
		return
	}
	if err := h.svc.Importar(c.Request.Context(), json.RawMessage(raw)); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
