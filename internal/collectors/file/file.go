package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"retag/internal/collectors"
	"retag/internal/logger"
	"retag/internal/parser"
)

// Stdin is read for the path "-".
var Stdin io.Reader = os.Stdin

// FileCollector reads local files. JSON files are walked for link strings,
// anything else is taken line by line.
type FileCollector struct{}

func (c *FileCollector) Collect(ctx context.Context, params map[string]interface{}) ([]string, error) {
	paths := collectors.StringsParam(params, "paths")
	if p := collectors.StringParam(params, "path"); p != "" {
		paths = append([]string{p}, paths...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("missing 'path' in collector config")
	}

	var lines []string
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := ReadPath(path)
		if err != nil {
			return nil, err
		}
		logger.Log.Debugf("Read %d lines from %s", len(found), path)
		lines = append(lines, found...)
	}
	return lines, nil
}

// ReadPath loads the lines of one file, or of stdin for "-".
func ReadPath(path string) ([]string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		links, err := parser.ExtractFromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse json %s: %w", path, err)
		}
		return links, nil
	}
	return parser.SplitLines(string(data)), nil
}

func init() {
	collectors.Register("file", func() collectors.Collector {
		return &FileCollector{}
	})
}
