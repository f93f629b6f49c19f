package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const (
	maxFileBytes   = 100 * 1024
	maxDirEntries  = 500
	maxDirListSize = 16 * 1024
)

// ReadFile reads a file relative to the run working directory.
type ReadFile struct {
	root string
}

// NewReadFile creates the read_file tool rooted at root.
func NewReadFile(root string) *ReadFile {
	return &ReadFile{root: root}
}

// Name returns the tool name.
func (r *ReadFile) Name() string { return "read_file" }

// Definition returns the SDK tool schema.
func (r *ReadFile) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        r.Name(),
			Description: anthropic.String("Read a text file from the working directory. Path is relative to the working directory."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative path to the file to read",
					},
				},
				Required: []string{"path"},
			},
		},
	}
}

type readFileInput struct {
	Path string `json:"path"`
}

// Execute reads the file, capped at 100KB.
func (r *ReadFile) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in readFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid input: %w", err)
	}

	path, err := resolveUnder(r.root, in.Path)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", in.Path, err)
	}
	if len(content) > maxFileBytes {
		return string(content[:maxFileBytes]) + "\n\n[file truncated]", nil
	}
	return string(content), nil
}

// ReadDirectory lists files under the run working directory.
type ReadDirectory struct {
	root string
}

// NewReadDirectory creates the read_directory tool rooted at root.
func NewReadDirectory(root string) *ReadDirectory {
	return &ReadDirectory{root: root}
}

// Name returns the tool name.
func (r *ReadDirectory) Name() string { return "read_directory" }

// Definition returns the SDK tool schema.
func (r *ReadDirectory) Definition() anthropic.ToolUnionParam {
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        r.Name(),
			Description: anthropic.String("List files under a directory in the working directory, recursively."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Relative directory path (default: working directory root)",
					},
				},
				Required: []string{},
			},
		},
	}
}

type readDirInput struct {
	Path string `json:"path"`
}

// Execute walks the directory and lists regular files with sizes.
func (r *ReadDirectory) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in readDirInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", fmt.Errorf("invalid input: %w", err)
		}
	}
	if in.Path == "" {
		in.Path = "."
	}

	dir, err := resolveUnder(r.root, in.Path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	count := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories like .git and .crewforge stay out of listings.
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if count >= maxDirEntries || b.Len() >= maxDirListSize {
			return filepath.SkipAll
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		info, infoErr := d.Info()
		if infoErr == nil {
			fmt.Fprintf(&b, "%s (%d bytes)\n", rel, info.Size())
		} else {
			fmt.Fprintf(&b, "%s\n", rel)
		}
		count++
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", in.Path, err)
	}

	if count == 0 {
		return "Directory is empty.", nil
	}
	if count >= maxDirEntries {
		b.WriteString("[listing truncated]\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// resolveUnder joins rel onto root and rejects paths that escape it.
func resolveUnder(root, rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path must be relative to the working directory")
	}

	joined := filepath.Clean(filepath.Join(root, rel))
	check, err := filepath.Rel(root, joined)
	if err != nil || check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the working directory", rel)
	}
	return joined, nil
}
