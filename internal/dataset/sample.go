package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/datascribe/datascribe-cli/internal/utils"
)

// FixedSampleName is the legacy intermediate filename written into the
// working directory when the caller asks to keep the sample around.
const FixedSampleName = "file_to_analyze.csv"

// SampleFile is a scoped handle on the persisted sample artifact. The default
// backing is a temp file removed by Cleanup, so concurrent runs never clash
// on a shared working-directory name.
type SampleFile struct {
	Path string
	keep bool
}

// NewSampleFile persists the table to a private temp file and returns its
// handle.
func NewSampleFile(t *Table) (*SampleFile, error) {
	f, err := os.CreateTemp("", "datascribe-sample-*.csv")
	if err != nil {
		return nil, fmt.Errorf("create sample file: %w", err)
	}
	if err := t.WriteCSV(f); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write sample file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("close sample file: %w", err)
	}
	return &SampleFile{Path: f.Name()}, nil
}

// WriteFixedSample persists the table under the fixed well-known name in dir,
// overwriting any prior file. The handle's Cleanup is a no-op: the artifact
// is deliberately left behind.
func WriteFixedSample(t *Table, dir string) (*SampleFile, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, fmt.Errorf("write sample file: %w", err)
	}
	path := filepath.Join(dir, FixedSampleName)
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return nil, err
	}
	return &SampleFile{Path: path, keep: true}, nil
}

// Read returns the sample's CSV content.
func (s *SampleFile) Read() (string, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read sample file: %w", err)
	}
	return string(b), nil
}

// Cleanup removes the backing temp file. Kept (fixed-name) samples are left
// in place.
func (s *SampleFile) Cleanup() error {
	if s.keep {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove sample file: %w", err)
	}
	return nil
}
