package handlers

import (
	"errors"
	"io"

	"fin-extract/internal/dto"
	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ExtractHandler struct {
	extraction *service.ExtractionService
	factFind   *service.FactFindService
	logger     *zap.Logger
}

func NewExtractHandler(extraction *service.ExtractionService, factFind *service.FactFindService, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{
		extraction: extraction,
		factFind:   factFind,
		logger:     logger,
	}
}

// ExtractDocument godoc
// @Summary Convert a document to markdown
// @Description Upload a PDF or image; the model returns its content as markdown with page markers
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF or image"
// @Security Bearer
// @Success 200 {object} dto.DocumentExtractResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} dto.DocumentExtractResponse
// @Router /api/v1/documents/extract [post]
func (h *ExtractHandler) ExtractDocument(c *fiber.Ctx) error {
	name, data, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	res, err := h.extraction.ExtractBytes(c.UserContext(), name, data)
	if errors.Is(err, service.ErrUnsupportedFile) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		h.logger.Error("Document extraction failed", zap.String("file", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Document extraction failed",
		})
	}

	status := fiber.StatusOK
	if res.Metadata.Error {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(dto.DocumentExtractResponse{
		Markdown: res.Markdown,
		Metadata: res.Metadata,
	})
}

// ExtractCategory godoc
// @Summary Extract one fact-find category from a document
// @Tags extraction
// @Accept multipart/form-data
// @Produce json
// @Param category path string true "basic_fact, asset, liability, income or expense"
// @Param file formData file true "Document"
// @Security Bearer
// @Success 200 {object} dto.CategoryExtractResponse
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/extract/{category} [post]
func (h *ExtractHandler) ExtractCategory(c *fiber.Ctx) error {
	category, err := models.ParseCategory(c.Params("category"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	name, data, err := readUpload(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := h.factFind.ExtractCategoryFromBytes(c.UserContext(), category, name, data)
	if errors.Is(err, provider.ErrFileTooLarge) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		h.logger.Error("Category extraction failed",
			zap.String("category", string(category)),
			zap.String("file", name),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(dto.CategoryExtractResponse{
		Category: string(category),
		Filename: name,
		Result:   result,
	})
}

func readUpload(c *fiber.Ctx) (string, []byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.New("file is required")
	}
	src, err := file.Open()
	if err != nil {
		return "", nil, errors.New("failed to open file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, errors.New("failed to read file")
	}
	return file.Filename, data, nil
}
