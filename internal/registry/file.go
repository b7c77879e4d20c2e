// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"texpub-cli/internal/version"
	"texpub-cli/pkg/fspath"
	"texpub-cli/pkg/types"
)

const recordExt = ".toml"

// FileClient stores one TOML file per record under a root directory, named
// by zero-padded record id. It exists so a publish pipeline works without a
// production tracking service; the directory doubles as a human-browsable
// audit trail.
type FileClient struct {
	root types.FilesystemPath

	// mu serializes id allocation and the write that claims it.
	mu     sync.Mutex
	nextID RecordID
}

var _ Client = (*FileClient)(nil)

// NewFileClient opens (creating if needed) a file-backed registry at root.
// The next record id is recovered from the highest id already on disk.
func NewFileClient(root types.FilesystemPath) (*FileClient, error) {
	if err := os.MkdirAll(root.String(), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry root: %w", err)
	}
	maxID, err := scanMaxID(root)
	if err != nil {
		return nil, err
	}
	return &FileClient{root: root, nextID: maxID + 1}, nil
}

// CreateRecord validates the record, assigns the next id and writes the
// record file via a temp file and rename so a crash never leaves a partial
// record behind.
func (c *FileClient) CreateRecord(ctx context.Context, rec Record) (RecordID, error) {
	if err := ctx.Err(); err != nil {
		return 0, &RecordCreateError{Record: rec, Cause: err}
	}
	if err := rec.Validate(); err != nil {
		return 0, &RecordCreateError{Record: rec, Cause: err}
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return 0, &RecordCreateError{Record: rec, Cause: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	if err := c.writeRecordFile(id, data); err != nil {
		return 0, &RecordCreateError{Record: rec, Cause: err}
	}
	c.nextID++
	return id, nil
}

// QueryMaxVersion scans all records for the identity and returns the highest
// registered version, with found=false when no record matches.
func (c *FileClient) QueryMaxVersion(ctx context.Context, id version.Identity) (int, bool, error) {
	entries, err := os.ReadDir(c.root.String())
	if err != nil {
		return 0, false, fmt.Errorf("scanning registry root: %w", err)
	}

	max, found := 0, false
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != recordExt {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), recordExt), 10, 64)
		if err != nil {
			continue
		}
		rec, err := c.ReadRecord(RecordID(n))
		if err != nil {
			return 0, false, err
		}
		if !rec.Matches(id) {
			continue
		}
		found = true
		if rec.Version > max {
			max = rec.Version
		}
	}
	return max, found, nil
}

// ReadRecord loads a record by id, mainly for tooling and tests.
func (c *FileClient) ReadRecord(id RecordID) (Record, error) {
	data, err := os.ReadFile(c.recordPath(id).String())
	if err != nil {
		return Record{}, fmt.Errorf("reading record %d: %w", id, err)
	}
	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding record %d: %w", id, err)
	}
	return rec, nil
}

func (c *FileClient) writeRecordFile(id RecordID, data []byte) error {
	dest := c.recordPath(id).String()
	tmp, err := os.CreateTemp(c.root.String(), "record-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (c *FileClient) recordPath(id RecordID) types.FilesystemPath {
	return fspath.JoinStr(c.root, fmt.Sprintf("%06d%s", id, recordExt))
}

// scanMaxID finds the highest record id present under root, 0 when empty.
func scanMaxID(root types.FilesystemPath) (RecordID, error) {
	entries, err := os.ReadDir(root.String())
	if err != nil {
		return 0, fmt.Errorf("scanning registry root: %w", err)
	}
	var max RecordID
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != recordExt {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSuffix(name, recordExt), 10, 64)
		if err != nil {
			continue
		}
		if RecordID(n) > max {
			max = RecordID(n)
		}
	}
	return max, nil
}
