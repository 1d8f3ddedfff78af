package service

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// PageCount opens a PDF with MuPDF and returns its number of pages.
func PageCount(path string) (int, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// PageCountBytes is PageCount for an in-memory PDF.
func PageCountBytes(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}
