package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"extsort/internal/common"
)

// SegmentStore crea, abre y borra los archivos de segmento dentro del
// directorio temporal, y lleva la cuenta de cuáles existen.
// Todo archivo que crea queda registrado hasta que se borra o se libera.
type SegmentStore struct {
	mu       sync.RWMutex
	fs       afero.Fs
	dir      string
	pattern  string
	segments map[string]common.Segment // Path -> Segmento
}

// NewSegmentStore prepara dir (lo crea si no existe). runID distingue los
// archivos de esta ejecución de los de otras que compartan el directorio.
func NewSegmentStore(fs afero.Fs, dir, runID string) (*SegmentStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio temporal %s: %w", dir, err)
	}
	return &SegmentStore{
		fs:       fs,
		dir:      dir,
		pattern:  common.SegmentFilePrefix + runID + "-*" + common.SegmentFileSuffix,
		segments: make(map[string]common.Segment),
	}, nil
}

func (s *SegmentStore) Fs() afero.Fs { return s.fs }

func (s *SegmentStore) Dir() string { return s.dir }

// Create abre un archivo de segmento nuevo para escritura.
// El segmento queda registrado como UNSORTED y sin registros.
func (s *SegmentStore) Create() (afero.File, common.Segment, error) {
	f, err := afero.TempFile(s.fs, s.dir, s.pattern)
	if err != nil {
		return nil, common.Segment{}, common.NewIOError("create", s.dir, err)
	}
	seg := common.Segment{
		ID:    strings.TrimSuffix(filepath.Base(f.Name()), common.SegmentFileSuffix),
		Path:  f.Name(),
		State: common.SegmentUnsorted,
	}
	s.mu.Lock()
	s.segments[seg.Path] = seg
	s.mu.Unlock()
	return f, seg, nil
}

// Open abre un segmento para lectura.
func (s *SegmentStore) Open(seg common.Segment) (afero.File, error) {
	f, err := s.fs.Open(seg.Path)
	if err != nil {
		return nil, common.NewIOError("open", seg.Path, err)
	}
	return f, nil
}

// Rewrite abre un segmento para reescribirlo desde cero.
func (s *SegmentStore) Rewrite(seg common.Segment) (afero.File, error) {
	f, err := s.fs.OpenFile(seg.Path, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, common.NewIOError("rewrite", seg.Path, err)
	}
	return f, nil
}

// Commit actualiza la metadata registrada (estado y cantidad de registros).
func (s *SegmentStore) Commit(seg common.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments[seg.Path] = seg
}

// Remove borra el archivo y deja de registrarlo.
func (s *SegmentStore) Remove(seg common.Segment) error {
	if err := s.fs.Remove(seg.Path); err != nil {
		return common.NewIOError("remove", seg.Path, err)
	}
	s.Release(seg)
	return nil
}

// Discard borra un segmento a medio escribir, ignorando errores.
func (s *SegmentStore) Discard(seg common.Segment) {
	_ = s.fs.Remove(seg.Path)
	s.Release(seg)
}

// Release deja de registrar el segmento sin tocar el archivo
// (por ejemplo, después de moverlo a la ruta de salida).
func (s *SegmentStore) Release(seg common.Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.segments, seg.Path)
}

// Get devuelve la metadata registrada para una ruta.
func (s *SegmentStore) Get(path string) (common.Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seg, ok := s.segments[path]
	return seg, ok
}

// Live devuelve los segmentos registrados, ordenados por ruta.
func (s *SegmentStore) Live() []common.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	live := make([]common.Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		live = append(live, seg)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].Path < live[j].Path })
	return live
}

// LiveRecords suma los registros de todos los segmentos registrados.
func (s *SegmentStore) LiveRecords() int64 {
	return common.SumRecords(s.Live())
}
