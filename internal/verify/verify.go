// Package verify comprueba, sin depender del ordenamiento, que una salida es
// una permutación ordenada de la entrada.
package verify

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"extsort/internal/codec"
)

var (
	ErrNotSorted      = errors.New("la salida no está ordenada")
	ErrDigestMismatch = errors.New("la salida no contiene los mismos registros que la entrada")
)

// Digest resume el multiconjunto de registros de un archivo. Sum y Xor son
// independientes del orden, así que dos permutaciones dan el mismo Digest
// (salvo por Sorted y FirstUnsorted).
type Digest struct {
	Records int64
	Sum     uint64
	Xor     uint64
	Min     int32
	Max     int32
	// Sorted es true si los registros no decrecen; si no, FirstUnsorted
	// es el índice del primer registro menor que su anterior.
	Sorted        bool
	FirstUnsorted int64
}

// Same indica si dos digests describen el mismo multiconjunto.
func (d Digest) Same(o Digest) bool {
	return d.Records == o.Records && d.Sum == o.Sum && d.Xor == o.Xor
}

// Checksum recorre el archivo una vez con un buffer de bufRecords registros.
func Checksum(fs afero.Fs, path string, bufRecords int) (Digest, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer f.Close()

	d := Digest{Sorted: true, FirstUnsorted: -1}
	r := codec.NewReader(f, bufRecords)
	var b [codec.RecordSize]byte
	var prev int32
	for {
		v, ok := r.Next()
		if !ok {
			break
		}
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		h := xxh3.Hash(b[:])
		d.Sum += h
		d.Xor ^= h
		if d.Records == 0 {
			d.Min, d.Max = v, v
		} else {
			if v < prev && d.Sorted {
				d.Sorted = false
				d.FirstUnsorted = d.Records
			}
			d.Min = min(d.Min, v)
			d.Max = max(d.Max, v)
		}
		prev = v
		d.Records++
	}
	if err := r.Err(); err != nil {
		return d, fmt.Errorf("error leyendo %s: %w", path, err)
	}
	return d, nil
}

// Compare calcula en paralelo los digests de input y output y falla si la
// salida no está ordenada o no es una permutación de la entrada.
func Compare(ctx context.Context, fs afero.Fs, input, output string, bufRecords int) error {
	var in, out Digest
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in, err = Checksum(fs, input, bufRecords)
		return err
	})
	g.Go(func() (err error) {
		out, err = Checksum(fs, output, bufRecords)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if !out.Sorted {
		return fmt.Errorf("%w: registro %d", ErrNotSorted, out.FirstUnsorted)
	}
	if !in.Same(out) {
		return fmt.Errorf("%w: entrada %d registros, salida %d", ErrDigestMismatch, in.Records, out.Records)
	}
	return nil
}
