package filesystem

import (
	"context"

	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

// ReportFunc receives the outcome of each file handed to the document set.
type ReportFunc func(driving.UploadResult)

// AutoIngest uploads the PDFs already in the folder and then every PDF that
// appears in it, until ctx is cancelled. A file that fails to ingest is
// reported and does not stop the watch.
func (c *Connector) AutoIngest(ctx context.Context, docs driving.DocumentService, report ReportFunc) error {
	if report == nil {
		report = func(driving.UploadResult) {}
	}

	uploads, errs := c.Scan(ctx)
	for _, err := range errs {
		c.log.Warnw("initial scan", "error", err)
	}
	if len(uploads) > 0 {
		for _, res := range docs.Upload(ctx, uploads) {
			report(res)
		}
	}

	changes, err := c.Watch(ctx)
	if err != nil {
		return err
	}
	for upload := range changes {
		for _, res := range docs.Upload(ctx, []driving.Upload{upload}) {
			report(res)
		}
	}
	return ctx.Err()
}
