package dto

import "fin-extract/internal/models"

type DocumentExtractResponse struct {
	Markdown string                  `json:"markdown"`
	Metadata models.DocumentMetadata `json:"metadata"`
}

type CategoryExtractResponse struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
	Result   any    `json:"result"`
}
