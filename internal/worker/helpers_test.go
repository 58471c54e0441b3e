package worker

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap/zaptest"

	"extsort/internal/codec"
	"extsort/internal/common"
	"extsort/internal/config"
	"extsort/internal/storage"
)

// Helper para crear un store en memoria
func newTestStore(t *testing.T) *storage.SegmentStore {
	t.Helper()
	store, err := storage.NewSegmentStore(afero.NewMemMapFs(), "/tmp/extsort", "run-test")
	if err != nil {
		t.Fatalf("No se pudo crear el store: %v", err)
	}
	return store
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TempDir = "/tmp/extsort"
	cfg.BufferRecords = 2
	cfg.SegmentRecords = 3
	cfg.FanIn = 2
	cfg.Workers = 2
	return cfg
}

func newTestExecutor(t *testing.T, store *storage.SegmentStore, cfg config.Config) *Executor {
	return NewExecutor(store, cfg, zaptest.NewLogger(t))
}

func encode(t *testing.T, recs []int32) []byte {
	t.Helper()
	var b bytes.Buffer
	if err := codec.WriteRecords(&b, recs); err != nil {
		t.Fatal(err)
	}
	return b.Bytes()
}

// Helper para crear un segmento con contenido dado
func createSegment(t *testing.T, store *storage.SegmentStore, recs []int32, state string) common.Segment {
	t.Helper()
	f, seg, err := store.Create()
	if err != nil {
		t.Fatalf("No se pudo crear el segmento: %v", err)
	}
	if _, err := f.Write(encode(t, recs)); err != nil {
		t.Fatal(err)
	}
	f.Close()
	seg.State = state
	seg.Records = int64(len(recs))
	store.Commit(seg)
	return seg
}

// Helper para leer un segmento completo
func readSegment(t *testing.T, store *storage.SegmentStore, seg common.Segment) []int32 {
	t.Helper()
	b, err := afero.ReadFile(store.Fs(), seg.Path)
	if err != nil {
		t.Fatalf("No se pudo leer %s: %v", seg.Path, err)
	}
	recs, err := codec.ReadRecords(bytes.NewReader(b), len(b)/codec.RecordSize)
	if err != nil {
		t.Fatal(err)
	}
	return recs
}

func exists(t *testing.T, store *storage.SegmentStore, seg common.Segment) bool {
	t.Helper()
	ok, err := afero.Exists(store.Fs(), seg.Path)
	if err != nil {
		t.Fatal(err)
	}
	return ok
}

func equalRecords(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
