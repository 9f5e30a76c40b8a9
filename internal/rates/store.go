package rates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
)

// LoadSnapshot reads the previously persisted snapshot. A missing file is
// not an error: the first run starts from the built-in seed series.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// WriteSnapshot persists the snapshot with an atomic replace, so a failed
// run can never leave a partially written file behind and the prior file
// survives any failure untouched.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return writeFileAtomically(path, bytes.NewReader(append(data, '\n')))
}

func writeFileAtomically(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SeedLevySeries returns the levy records known when this tool was written,
// used when no persisted file exists yet. Levy periods are fiscal-year
// aligned, April 1 through March 31.
func SeedLevySeries() Series {
	fy2024End := civil.Date{Year: 2025, Month: time.March, Day: 31}
	return Series{
		{PeriodStart: civil.Date{Year: 2024, Month: time.April, Day: 1}, PeriodEnd: &fy2024End, Value: 3.49, Source: SourcePersisted},
		{PeriodStart: civil.Date{Year: 2025, Month: time.April, Day: 1}, Value: 3.98, Source: SourcePersisted},
	}
}
