package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"crewforge/internal/exec"
)

var exportFormats = map[string]string{
	"pdf":  ".pdf",
	"docx": ".docx",
	"html": ".html",
}

// ExportDocument converts a markdown artifact to another format
// by shelling out to pandoc.
type ExportDocument struct {
	root   string
	runner exec.CommandRunner
}

// NewExportDocument creates the export_document tool rooted at root.
func NewExportDocument(root string, runner exec.CommandRunner) *ExportDocument {
	return &ExportDocument{root: root, runner: runner}
}

// Name returns the tool name.
func (e *ExportDocument) Name() string { return "export_document" }

// Definition returns the SDK tool schema.
func (e *ExportDocument) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        e.Name(),
			Description: anthropic.String("Convert a markdown file to pdf, docx, or html using pandoc. Writes the converted file next to the source."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"input_file": map[string]interface{}{
						"type":        "string",
						"description": "Relative path to the markdown file to convert",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Target format: pdf, docx, or html",
					},
				},
				Required: []string{"input_file", "format"},
			},
		},
	}
}

type exportInput struct {
	InputFile string `json:"input_file"`
	Format    string `json:"format"`
}

// Execute runs pandoc on the source file.
func (e *ExportDocument) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in exportInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	ext, ok := exportFormats[strings.ToLower(in.Format)]
	if !ok {
		return "", fmt.Errorf("unsupported format %q (supported: pdf, docx, html)", in.Format)
	}

	src, err := resolveUnder(e.root, in.InputFile)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("input file %s: %w", in.InputFile, err)
	}

	if !e.runner.LookPath("pandoc") {
		return "", fmt.Errorf("pandoc is not installed; install it to export documents")
	}

	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ext
	out, err := e.runner.Run(ctx, e.root, "pandoc", src, "-o", dst)
	if err != nil {
		return "", fmt.Errorf("pandoc failed: %v\n%s", err, string(out))
	}

	rel, relErr := filepath.Rel(e.root, dst)
	if relErr != nil {
		rel = dst
	}
	return fmt.Sprintf("Exported to %s", rel), nil
}
