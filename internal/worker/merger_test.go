package worker

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"extsort/internal/common"
	"extsort/internal/storage"
)

func TestMergeSegments(t *testing.T) {
	tests := []struct {
		name     string
		inputs   [][]int32
		fanIn    int
		expected []int32
	}{
		{
			name:     "Escenario_Dos_Segmentos",
			inputs:   [][]int32{{3, 3, 5}, {1, 2, 4}},
			fanIn:    2,
			expected: []int32{1, 2, 3, 3, 4, 5},
		},
		{
			name:     "Tres_Con_Repetidos",
			inputs:   [][]int32{{1, 1, 9}, {1, 5}, {-2, 1, 10, 11}},
			fanIn:    4,
			expected: []int32{-2, 1, 1, 1, 1, 5, 9, 10, 11},
		},
		{
			name:     "Con_Segmento_Vacío",
			inputs:   [][]int32{{}, {2, 3}, {1}},
			fanIn:    3,
			expected: []int32{1, 2, 3},
		},
		{
			name:     "Todos_Vacíos",
			inputs:   [][]int32{{}, {}},
			fanIn:    2,
			expected: []int32{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			var segs []common.Segment
			for _, in := range tt.inputs {
				segs = append(segs, createSegment(t, store, in, common.SegmentSorted))
			}

			out, err := MergeSegments(context.Background(), store, segs, tt.fanIn, 2)
			if err != nil {
				t.Fatalf("MergeSegments falló: %v", err)
			}
			if got := readSegment(t, store, out); !equalRecords(got, tt.expected) {
				t.Errorf("salida %v, esperado %v", got, tt.expected)
			}
			if out.State != common.SegmentSorted || out.Records != int64(len(tt.expected)) {
				t.Errorf("metadata de salida incorrecta: %+v", out)
			}
			// Merge destructivo: las entradas ya no existen
			for _, seg := range segs {
				if exists(t, store, seg) {
					t.Errorf("la entrada %s sigue existiendo", seg.Path)
				}
			}
			if live := store.Live(); len(live) != 1 || live[0].Path != out.Path {
				t.Errorf("el store debería registrar solo la salida, registra %v", live)
			}
		})
	}
}

func TestMergeSingleSegmentIsNoop(t *testing.T) {
	store := newTestStore(t)
	seg := createSegment(t, store, []int32{1, 2, 3}, common.SegmentSorted)

	out, err := MergeSegments(context.Background(), store, []common.Segment{seg}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Path != seg.Path {
		t.Errorf("con una entrada debería devolverse la misma: %s != %s", out.Path, seg.Path)
	}
	if !exists(t, store, seg) {
		t.Errorf("la entrada no debería borrarse")
	}
}

func TestMergeFanInExceeded(t *testing.T) {
	store := newTestStore(t)
	segs := []common.Segment{
		createSegment(t, store, []int32{1}, common.SegmentSorted),
		createSegment(t, store, []int32{2}, common.SegmentSorted),
		createSegment(t, store, []int32{3}, common.SegmentSorted),
	}
	_, err := MergeSegments(context.Background(), store, segs, 2, 2)
	if !errors.Is(err, common.ErrFanInExceeded) {
		t.Errorf("esperaba ErrFanInExceeded, obtuvo %v", err)
	}
	for _, seg := range segs {
		if !exists(t, store, seg) {
			t.Errorf("la entrada %s fue borrada", seg.Path)
		}
	}
}

func TestMergeFailureKeepsInputs(t *testing.T) {
	store := newTestStore(t)
	good := createSegment(t, store, []int32{1, 2, 3, 4, 5, 6}, common.SegmentSorted)
	bad := createSegment(t, store, []int32{2, 4}, common.SegmentSorted)

	// Corromper la segunda entrada: fragmento final de 2 bytes
	b, err := afero.ReadFile(store.Fs(), bad.Path)
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(store.Fs(), bad.Path, append(b, 0, 1), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = MergeSegments(context.Background(), store, []common.Segment{good, bad}, 2, 2)
	if !errors.Is(err, common.ErrPartialRecord) {
		t.Fatalf("esperaba ErrPartialRecord, obtuvo %v", err)
	}
	for _, seg := range []common.Segment{good, bad} {
		if !exists(t, store, seg) {
			t.Errorf("tras un merge fallido la entrada %s debería existir", seg.Path)
		}
	}
	// La salida parcial no queda publicada
	if live := store.Live(); len(live) != 2 {
		t.Errorf("esperaba solo las 2 entradas registradas, hay %d", len(live))
	}
	files, err := afero.ReadDir(store.Fs(), store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("esperaba 2 archivos en el directorio temporal, hay %d", len(files))
	}
}

func TestMergeRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	store := newTestStore(t)

	var all []int32
	var segs []common.Segment
	for i := 0; i < 8; i++ {
		part := make([]int32, rnd.Intn(500))
		for j := range part {
			part[j] = int32(rnd.Intn(100)) - 50 // muchos repetidos
		}
		slices.Sort(part)
		all = append(all, part...)
		segs = append(segs, createSegment(t, store, part, common.SegmentSorted))
	}

	out, err := MergeSegments(context.Background(), store, segs, 8, 7)
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(all)
	if !equalRecords(readSegment(t, store, out), all) {
		t.Errorf("el merge no produjo la intercalación ordenada de las entradas")
	}
}

// removeFailFs falla al borrar el archivo indicado.
type removeFailFs struct {
	afero.Fs
	failPath string
}

func (fs *removeFailFs) Remove(name string) error {
	if name == fs.failPath {
		return errors.New("disco roto")
	}
	return fs.Fs.Remove(name)
}

func TestMergeRemoveFailureKeepsOutput(t *testing.T) {
	fs := &removeFailFs{Fs: afero.NewMemMapFs()}
	store, err := storage.NewSegmentStore(fs, "/tmp/extsort", "run-test")
	if err != nil {
		t.Fatal(err)
	}
	first := createSegment(t, store, []int32{1, 3, 5}, common.SegmentSorted)
	second := createSegment(t, store, []int32{2, 4}, common.SegmentSorted)
	fs.failPath = second.Path

	out, err := MergeSegments(context.Background(), store, []common.Segment{first, second}, 2, 2)
	var ioErr *common.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "remove" {
		t.Fatalf("esperaba IOError de remove, obtuvo %v", err)
	}
	if out.Path == "" || !strings.Contains(err.Error(), out.Path) {
		t.Fatalf("el error debería nombrar la salida %q: %v", out.Path, err)
	}

	// La primera entrada ya no está; la salida completa sigue registrada
	if exists(t, store, first) {
		t.Errorf("la entrada %s debería estar borrada", first.Path)
	}
	if _, ok := store.Get(out.Path); !ok {
		t.Errorf("la salida %s debería seguir registrada", out.Path)
	}
	if got := readSegment(t, store, out); !equalRecords(got, []int32{1, 2, 3, 4, 5}) {
		t.Errorf("salida %v", got)
	}
	if got := store.LiveRecords(); got != 7 {
		t.Errorf("registros vivos %d, esperado 7 (salida + entrada no borrada)", got)
	}
}
