package worker

import (
	"context"
	"fmt"
	"slices"

	"extsort/internal/codec"
	"extsort/internal/common"
	"extsort/internal/storage"
)

// SortSegment carga el segmento completo en memoria, lo ordena y lo
// reescribe en el mismo archivo. Devuelve el segmento marcado SORTED.
func SortSegment(ctx context.Context, store *storage.SegmentStore, seg common.Segment, segmentRecords, bufRecords int) (common.Segment, error) {
	if err := ctx.Err(); err != nil {
		return seg, err
	}

	// 1. Cargar (acotado por segmentRecords)
	recs, err := loadSegment(store, seg, segmentRecords)
	if err != nil {
		return seg, err
	}

	// 2. Ordenar
	slices.Sort(recs)

	// 3. Reescribir truncado
	f, err := store.Rewrite(seg)
	if err != nil {
		return seg, err
	}
	w := codec.NewWriter(f, bufRecords)
	if err := w.WriteAll(recs); err != nil {
		f.Close()
		return seg, common.NewIOError("write", seg.Path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return seg, common.NewIOError("write", seg.Path, err)
	}
	if err := f.Close(); err != nil {
		return seg, common.NewIOError("close", seg.Path, err)
	}

	seg.State = common.SegmentSorted
	seg.Records = int64(len(recs))
	store.Commit(seg)
	return seg, nil
}

func loadSegment(store *storage.SegmentStore, seg common.Segment, segmentRecords int) ([]int32, error) {
	f, err := store.Open(seg)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, common.NewIOError("stat", seg.Path, err)
	}
	if info.Size() > int64(segmentRecords)*codec.RecordSize {
		return nil, common.NewIOError("read", seg.Path,
			fmt.Errorf("el segmento tiene %d bytes, máximo %d registros", info.Size(), segmentRecords))
	}

	recs, err := codec.ReadRecords(f, segmentRecords)
	if err != nil {
		return nil, common.NewIOError("read", seg.Path, err)
	}
	return recs, nil
}
