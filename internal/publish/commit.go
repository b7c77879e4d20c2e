// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"texpub-cli/pkg/types"
)

// maxCopyWorkers bounds the per-file copy parallelism of one commit.
const maxCopyWorkers = 4

// fileOp is one source-to-destination copy of a commit plan.
type fileOp struct {
	Src types.FilesystemPath
	Dst types.FilesystemPath
}

// commit copies every planned file into the publish area. Each file is
// written to a temp name in its destination directory and renamed into
// place, so readers never observe a half-written publish file. On any
// failure or cancellation every destination written by this attempt is
// removed; sources in the work area are never touched.
func commit(ctx context.Context, plan []fileOp) ([]types.FilesystemPath, error) {
	for _, op := range plan {
		if err := os.MkdirAll(filepath.Dir(op.Dst.String()), 0o755); err != nil {
			return nil, &CommitError{Path: op.Dst, Cause: err}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		written  []types.FilesystemPath
		firstErr *CommitError
	)

	jobs := make(chan fileOp)
	var wg sync.WaitGroup

	workers := maxCopyWorkers
	if len(plan) < workers {
		workers = len(plan)
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for op := range jobs {
				if err := copyFile(ctx, op.Src, op.Dst); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = &CommitError{Path: op.Dst, Cause: err}
					}
					mu.Unlock()
					cancel()
					continue
				}
				mu.Lock()
				written = append(written, op.Dst)
				mu.Unlock()
			}
		}()
	}

	for _, op := range plan {
		select {
		case jobs <- op:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = &CommitError{Cause: ctx.Err()}
	}
	if firstErr != nil {
		rollback(written)
		return nil, firstErr
	}
	return written, nil
}

// copyFile copies src to dst atomically via a temp file in dst's directory.
func copyFile(ctx context.Context, src, dst types.FilesystemPath) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src.String())
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst.String()), ".publish-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst.String()); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// rollback removes destinations written by a failed attempt. Removal is
// best-effort; a leftover file is reported nowhere but the publish failed
// loudly already.
func rollback(written []types.FilesystemPath) {
	for _, p := range written {
		_ = os.Remove(p.String())
	}
}

// verifyPlanSources ensures every planned source exists before any copy
// starts, so a missing file aborts pre-copy instead of mid-commit.
func verifyPlanSources(plan []fileOp) error {
	for _, op := range plan {
		info, err := os.Stat(op.Src.String())
		if err != nil {
			return fmt.Errorf("source missing: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("source %s is a directory", op.Src)
		}
	}
	return nil
}
