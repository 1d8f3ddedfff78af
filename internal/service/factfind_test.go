package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fin-extract/internal/models"
	"fin-extract/internal/provider"
	"fin-extract/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const incomeAnswer = `{"incomes":[{"type":"Base Salary","company":"WOK N ROLL PTY LTD","ownership":"Li Wang","frequency":"Annually","amount":95000,"source":[{"file_path":"payslip.pdf","page_number":1}]}]}`

func newFactFind(t *testing.T, p *fakeProvider) *FactFindService {
	t.Helper()
	return NewFactFindService(p, &config.ExtractConfig{ResultDir: filepath.Join(t.TempDir(), "result")}, zap.NewNop())
}

func TestAggregate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "# B body")
	writeFile(t, filepath.Join(dir, "a.md"), "# A body")
	meta, err := json.Marshal(models.DocumentMetadata{AnalysisID: "x1", Filename: "a.pdf", Description: "payslip"})
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "a"+MetadataSuffix), string(meta))
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not markdown")

	content, n, err := Aggregate(dir, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	blocks := strings.Split(content, "\n\n<file>")
	require.Len(t, blocks, 2)

	first := blocks[0]
	assert.True(t, strings.HasPrefix(first, "<file>\n<meta>\n{\n  \"analysis_id\": \"x1\""))
	assert.Contains(t, first, "\"description\": \"payslip\"")
	assert.Contains(t, first, "</meta>\n<body>\n# A body\n</body>\nend of a.md\n</file>")

	second := blocks[1]
	assert.Contains(t, second, "Metadata file not found: b"+MetadataSuffix)
	assert.Contains(t, second, "\"error\": true")
	assert.True(t, strings.HasSuffix(second, "# B body\n</body>\nend of b.md\n</file>"))
	assert.NotContains(t, content, "not markdown")
}

func TestAggregate_Empty(t *testing.T) {
	_, _, err := Aggregate(t.TempDir(), zap.NewNop())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestRunCategory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "payslip.md"), "Gross pay 95,000")

	p := newFakeProvider()
	p.answer = "```json\n" + incomeAnswer + "\n```"
	svc := newFactFind(t, p)

	result, path, err := svc.RunCategory(context.Background(), models.CategoryIncome, dir)
	require.NoError(t, err)

	income, ok := result.(*models.IncomeResult)
	require.True(t, ok)
	require.Len(t, income.Incomes, 1)
	assert.Equal(t, "Base Salary", income.Incomes[0].Type)
	assert.Equal(t, 95000.0, income.Incomes[0].Amount)
	assert.Equal(t, "payslip.pdf", income.Incomes[0].Source[0].FilePath)

	assert.Equal(t, filepath.Join(svc.cfg.ResultDir, "income.json"), path)
	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	var back models.IncomeResult
	require.NoError(t, json.Unmarshal(saved, &back))
	assert.Equal(t, *income, back)

	// one call, no retries
	require.Len(t, p.completes, 1)
	req := p.completes[0]
	assert.True(t, strings.HasPrefix(req.Prompt, categoryUserPrefix+"<file>"))
	assert.Contains(t, req.Prompt, "Gross pay 95,000")
	assert.Contains(t, req.System, "Base Salary")
	assert.Equal(t, "income_extraction", req.SchemaName)
	assert.Empty(t, req.Files)
}

func TestExtractCategory_NoRetryOnBadAnswer(t *testing.T) {
	p := newFakeProvider()
	p.answer = "I could not find any income."
	svc := newFactFind(t, p)

	_, err := svc.ExtractCategory(context.Background(), models.CategoryIncome, "content")
	assert.ErrorContains(t, err, "not valid JSON")
	assert.Len(t, p.completes, 1)
}

func TestExtractCategory_ProviderError(t *testing.T) {
	p := newFakeProvider()
	p.answerErr = errors.New("rate limited")
	_, err := newFactFind(t, p).ExtractCategory(context.Background(), models.CategoryAsset, "content")
	assert.ErrorContains(t, err, "asset extraction failed")
}

func TestExtractCategoryFromFile(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "payslip.pdf")
	writeFile(t, doc, "%PDF")

	p := newFakeProvider()
	p.answerFn = func(req provider.CompletionRequest) (string, error) {
		if len(req.Files) != 1 || req.Files[0].Filename != "payslip.pdf" {
			return "", errors.New("document not attached")
		}
		return incomeAnswer, nil
	}
	svc := newFactFind(t, p)

	result, err := svc.ExtractCategoryFromFile(context.Background(), models.CategoryIncome, doc)
	require.NoError(t, err)
	assert.Len(t, result.(*models.IncomeResult).Incomes, 1)
	assert.Equal(t, 1, p.deleteCount())
	assert.Zero(t, p.remaining())
}

func TestSetSystemPrompt(t *testing.T) {
	p := newFakeProvider()
	p.answer = `{"assets":[]}`
	svc := newFactFind(t, p)
	svc.SetSystemPrompt(models.CategoryAsset, "custom asset prompt")

	_, err := svc.ExtractCategory(context.Background(), models.CategoryAsset, "x")
	require.NoError(t, err)
	assert.Equal(t, "custom asset prompt", p.completes[0].System)
}
