package worker

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"extsort/internal/codec"
	"extsort/internal/common"
	"extsort/internal/storage"
)

// head es el registro actual de una entrada del merge.
type head struct {
	value int32
	src   int
}

// headHeap implementa heap.Interface como min-heap por valor.
type headHeap []head

func (h headHeap) Len() int           { return len(h) }
func (h headHeap) Less(i, j int) bool { return h[i].value < h[j].value }
func (h headHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *headHeap) Push(x any) { *h = append(*h, x.(head)) }
func (h *headHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// MergeSegments mezcla segmentos ya ordenados en un segmento nuevo y borra
// las entradas. Con una sola entrada la devuelve sin cambios. Si algo falla
// las entradas quedan intactas y la salida parcial se descarta.
func MergeSegments(ctx context.Context, store *storage.SegmentStore, segs []common.Segment, fanIn, bufRecords int) (common.Segment, error) {
	switch {
	case len(segs) == 0:
		return common.Segment{}, errors.New("merge sin segmentos de entrada")
	case len(segs) > fanIn:
		return common.Segment{}, fmt.Errorf("%w: %d > %d", common.ErrFanInExceeded, len(segs), fanIn)
	case len(segs) == 1:
		return segs[0], nil
	}
	if err := ctx.Err(); err != nil {
		return common.Segment{}, err
	}

	out, err := mergeInto(store, segs, bufRecords)
	if err != nil {
		return common.Segment{}, err
	}

	// La salida ya está escrita: recién ahora se borran las entradas.
	// Si un borrado falla la salida completa sigue registrada en el store.
	for i, seg := range segs {
		if err := store.Remove(seg); err != nil {
			return out, fmt.Errorf("borradas %d de %d entradas, la salida completa queda en %s: %w",
				i, len(segs), out.Path, err)
		}
	}
	return out, nil
}

func mergeInto(store *storage.SegmentStore, segs []common.Segment, bufRecords int) (out common.Segment, err error) {
	// 1. Abrir cada entrada como un lector perezoso
	files := make([]afero.File, 0, len(segs))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	readers := make([]*codec.Reader, len(segs))
	for i, seg := range segs {
		f, err := store.Open(seg)
		if err != nil {
			return common.Segment{}, err
		}
		files = append(files, f)
		readers[i] = codec.NewReader(f, bufRecords)
	}

	// 2. Crear la salida; se descarta si algo falla
	outFile, out, err := store.Create()
	if err != nil {
		return common.Segment{}, err
	}
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				outFile.Close()
			}
			store.Discard(out)
			out = common.Segment{}
		}
	}()
	w := codec.NewWriter(outFile, bufRecords)

	// 3. Selección k-way: emitir siempre la menor cabeza y avanzar solo esa entrada
	h := make(headHeap, 0, len(readers))
	for i, r := range readers {
		if v, ok := r.Next(); ok {
			h = append(h, head{value: v, src: i})
		} else if rerr := r.Err(); rerr != nil {
			return out, common.NewIOError("read", segs[i].Path, rerr)
		}
	}
	heap.Init(&h)
	for h.Len() > 0 {
		top := h[0]
		if err := w.Write(top.value); err != nil {
			return out, common.NewIOError("write", out.Path, err)
		}
		if v, ok := readers[top.src].Next(); ok {
			h[0].value = v
			heap.Fix(&h, 0)
			continue
		}
		if rerr := readers[top.src].Err(); rerr != nil {
			return out, common.NewIOError("read", segs[top.src].Path, rerr)
		}
		heap.Pop(&h)
	}

	// 4. Bajar a disco antes de dar la salida por buena
	if err := w.Flush(); err != nil {
		return out, common.NewIOError("write", out.Path, err)
	}
	if err := outFile.Sync(); err != nil {
		return out, common.NewIOError("sync", out.Path, err)
	}
	closed = true
	if err := outFile.Close(); err != nil {
		return out, common.NewIOError("close", out.Path, err)
	}

	if want := common.SumRecords(segs); w.Written() != want {
		return out, common.NewIOError("merge", out.Path,
			fmt.Errorf("%w: escritos %d, esperados %d", common.ErrRecordCountMismatch, w.Written(), want))
	}

	out.State = common.SegmentSorted
	out.Records = w.Written()
	store.Commit(out)
	return out, nil
}
