package worker

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"extsort/internal/codec"
	"extsort/internal/common"
	"extsort/internal/storage"
)

// CheckInput verifica que path sea un archivo regular con un número entero
// de registros y devuelve cuántos registros tiene.
func CheckInput(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", common.ErrInputNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s no es un archivo regular", common.ErrInputNotFound, path)
	}
	if info.Size()%codec.RecordSize != 0 {
		return 0, common.NewIOError("stat", path,
			fmt.Errorf("%w: %d bytes no es múltiplo de %d", common.ErrPartialRecord, info.Size(), codec.RecordSize))
	}
	return info.Size() / codec.RecordSize, nil
}

// Splitter corta el archivo de entrada en segmentos de como máximo
// segmentRecords registros, sin reordenar nada.
type Splitter struct {
	store          *storage.SegmentStore
	input          string
	segmentRecords int
	log            *zap.Logger
}

func NewSplitter(store *storage.SegmentStore, input string, segmentRecords int, logger *zap.Logger) *Splitter {
	return &Splitter{
		store:          store,
		input:          input,
		segmentRecords: segmentRecords,
		log:            logger.Named("splitter"),
	}
}

// Segments devuelve la secuencia perezosa de segmentos (UNSORTED). Cada
// ventana se escribe y se entrega antes de leer la siguiente. Una entrada
// vacía produce un único segmento vacío. Ante un error se entrega el error
// y la secuencia termina.
func (s *Splitter) Segments(ctx context.Context) iter.Seq2[common.Segment, error] {
	return func(yield func(common.Segment, error) bool) {
		in, err := s.store.Fs().Open(s.input)
		if err != nil {
			yield(common.Segment{}, common.NewIOError("open", s.input, err))
			return
		}
		defer in.Close()
		adviseSequential(in)

		window := make([]byte, s.segmentRecords*codec.RecordSize)
		emitted := 0
		for {
			if err := ctx.Err(); err != nil {
				yield(common.Segment{}, err)
				return
			}

			// 1. Leer una ventana completa (la última puede ser corta)
			n, err := io.ReadFull(in, window)
			if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
				yield(common.Segment{}, common.NewIOError("read", s.input, err))
				return
			}
			if n == 0 && emitted > 0 {
				return
			}
			if n%codec.RecordSize != 0 {
				yield(common.Segment{}, common.NewIOError("read", s.input, common.ErrPartialRecord))
				return
			}

			// 2. Volcarla tal cual a un segmento nuevo
			seg, err := s.writeSegment(window[:n])
			if err != nil {
				yield(common.Segment{}, err)
				return
			}
			emitted++
			s.log.Debug("segmento cortado", zap.String("segment", seg.ID), zap.Int64("records", seg.Records))

			if !yield(seg, nil) || n < len(window) {
				return
			}
		}
	}
}

func (s *Splitter) writeSegment(b []byte) (common.Segment, error) {
	f, seg, err := s.store.Create()
	if err != nil {
		return common.Segment{}, err
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		s.store.Discard(seg)
		return common.Segment{}, common.NewIOError("write", seg.Path, err)
	}
	if err := f.Close(); err != nil {
		s.store.Discard(seg)
		return common.Segment{}, common.NewIOError("close", seg.Path, err)
	}
	seg.Records = int64(len(b) / codec.RecordSize)
	s.store.Commit(seg)
	return seg, nil
}
