package handlers

import (
	"fin-extract/internal/dto"
	"fin-extract/internal/ledger"
	"fin-extract/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LedgerHandler struct {
	store   *ledger.Store
	cleanup *service.CleanupService
	logger  *zap.Logger
}

func NewLedgerHandler(store *ledger.Store, cleanup *service.CleanupService, logger *zap.Logger) *LedgerHandler {
	return &LedgerHandler{
		store:   store,
		cleanup: cleanup,
		logger:  logger,
	}
}

// GetLedger godoc
// @Summary Local upload ledger
// @Description Records and upload sessions as stored in the ledger file
// @Tags ledger
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.LedgerResponse
// @Router /api/v1/ledger [get]
func (h *LedgerHandler) GetLedger(c *fiber.Ctx) error {
	l, err := h.store.Load()
	if err != nil {
		h.logger.Error("Failed to load ledger", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load ledger",
		})
	}
	return c.JSON(dto.NewLedgerResponse(l))
}

// ListRemote godoc
// @Summary Remote files
// @Description Files the provider currently holds; tracked is true when the ledger has a record for it
// @Tags ledger
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.RemoteFileResponse
// @Failure 502 {object} map[string]string
// @Router /api/v1/files/remote [get]
func (h *LedgerHandler) ListRemote(c *fiber.Ctx) error {
	files, err := h.cleanup.ListRemote(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to list remote files", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to list remote files",
		})
	}

	l, err := h.store.Load()
	if err != nil {
		h.logger.Warn("Ledger unavailable, tracked flags are false", zap.Error(err))
	}

	resp := make([]dto.RemoteFileResponse, 0, len(files))
	for _, f := range files {
		_, tracked := ledger.Lookup(l, f.ID)
		resp = append(resp, dto.NewRemoteFileResponse(f, tracked))
	}
	return c.JSON(resp)
}
