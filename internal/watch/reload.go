package watch

import (
	"context"

	"go.uber.org/zap"

	"eventdocs/internal/crawler"
	"eventdocs/internal/pipeline"
	"eventdocs/internal/storage"
)

// Rescan returns a reload function that crawls root again, swaps the records
// served by mem and drops every enriched collection computed from the old
// snapshot.
func Rescan(c *crawler.Crawler, root string, mem *storage.Memory, p *pipeline.Pipeline, logger *zap.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context) error {
		cat, err := c.Scan(root)
		if err != nil {
			return err
		}
		mem.Replace(cat.Records())
		p.Cache().Invalidate()
		p.Diagnostics().Reset()
		logger.Info("catalog reloaded",
			zap.Int("records", cat.Len()),
			zap.Int("problems", len(cat.Problems())),
		)
		return nil
	}
}
