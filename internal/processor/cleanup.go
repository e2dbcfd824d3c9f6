package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/clipnorm/internal/codec"
)

// tempPath returns the hidden sibling a clip is encoded to before it is
// renamed onto its final name.
func tempPath(finalPath string) string {
	return filepath.Join(filepath.Dir(finalPath), "."+filepath.Base(finalPath)+".part")
}

// writeVideo encodes clip to a temporary file and moves it into place, so
// an interrupted or failed encode never leaves a truncated file under the
// final name.
func (p *implProcessor) writeVideo(ctx context.Context, clip codec.Clip, finalPath string) error {
	tmp := tempPath(finalPath)

	if err := clip.WriteTo(ctx, tmp, p.params); err != nil {
		p.cleanupTempFile(ctx, tmp)
		return fmt.Errorf("encode %s: %w", filepath.Base(finalPath), err)
	}

	if err := os.Rename(tmp, finalPath); err != nil {
		p.cleanupTempFile(ctx, tmp)
		return fmt.Errorf("move %s into place: %w", filepath.Base(finalPath), err)
	}
	return nil
}

// cleanupTempFile removes a temporary file, logs warning if fails
func (p *implProcessor) cleanupTempFile(ctx context.Context, filePath string) {
	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", filePath, err)
	} else {
		p.logger.Debug(ctx, "Cleaned up temp file: %s", filePath)
	}
}
