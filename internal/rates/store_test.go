package rates

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadSnapshotMissingFile(t *testing.T) {
	snap, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot for missing file, got %+v", snap)
	}
}

func TestWriteAndLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tepco_rates.json")

	fuel := Series{
		{PeriodStart: date(2026, time.January, 1), PeriodEnd: dateP(2026, time.January, 31), Value: -7.72, Source: SourceHTMLTable},
	}
	levy := Series{
		{PeriodStart: date(2025, time.April, 1), Value: 3.98, Source: SourcePersisted},
	}
	snap := AssembleSnapshot(date(2026, time.January, 24), fuel, levy)

	if err := WriteSnapshot(path, &snap); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if !reflect.DeepEqual(*loaded, snap) {
		t.Errorf("round trip changed the snapshot:\nwrote  %+v\nloaded %+v", snap, *loaded)
	}

	// The atomic write must not leave temp files around.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("expected decode error for corrupt snapshot file")
	}
}

func TestSeedLevySeriesIsConsistent(t *testing.T) {
	seed := SeedLevySeries()
	if _, err := MergeSeries(seed, nil); err != nil {
		t.Fatalf("seed levy series violates the series invariant: %v", err)
	}
	if seed[len(seed)-1].PeriodEnd != nil {
		t.Errorf("expected newest seed record to be open-ended")
	}
}
