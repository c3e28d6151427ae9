package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"retag/internal/logger"
	"retag/internal/parser"
	"retag/internal/publishers"
)

// Publisher writes the payload to params.path, replacing the file.
type Publisher struct{}

func (p *Publisher) Publish(_ context.Context, records []*parser.Record, config map[string]interface{}) error {
	path, _ := config["path"].(string)
	if path == "" {
		return fmt.Errorf("file publisher requires path")
	}

	payload, err := publishers.GenerateSubscriptionPayload(records, config)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(payload+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Log.Infof("💾 Wrote %s", path)
	return nil
}

func init() {
	publishers.Register("file", func() publishers.Publisher { return &Publisher{} })
}
