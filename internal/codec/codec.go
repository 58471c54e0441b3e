// Package codec lee y escribe archivos de enteros int32 little-endian
// en bloques, sin cabecera ni separadores.
package codec

import (
	"encoding/binary"
	"errors"
	"io"

	"extsort/internal/common"
)

// RecordSize es el ancho en bytes de un registro.
const RecordSize = 4

var byteOrder = binary.LittleEndian

// ReadRecords lee hasta max registros de r. Leer menos porque el archivo
// se terminó es normal; un fragmento final de 1-3 bytes es ErrPartialRecord.
func ReadRecords(r io.Reader, max int) ([]int32, error) {
	buf := make([]byte, max*RecordSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	if n%RecordSize != 0 {
		return nil, common.ErrPartialRecord
	}
	return decode(buf[:n], make([]int32, 0, n/RecordSize)), nil
}

// WriteRecords escribe todos los registros de una vez.
func WriteRecords(w io.Writer, recs []int32) error {
	buf := make([]byte, len(recs)*RecordSize)
	encode(buf, recs)
	_, err := w.Write(buf)
	return err
}

func decode(b []byte, dst []int32) []int32 {
	for i := 0; i+RecordSize <= len(b); i += RecordSize {
		dst = append(dst, int32(byteOrder.Uint32(b[i:])))
	}
	return dst
}

func encode(dst []byte, recs []int32) {
	for i, v := range recs {
		byteOrder.PutUint32(dst[i*RecordSize:], uint32(v))
	}
}

// ==========================================
// LECTOR PEREZOSO
// ==========================================

// Reader entrega los registros de un archivo uno a uno, leyendo por
// adelantado como máximo bufRecords registros.
type Reader struct {
	r    io.Reader
	buf  []byte
	i, j int // buf[i:j] contiene bytes válidos sin consumir
	eof  bool
	err  error
}

func NewReader(r io.Reader, bufRecords int) *Reader {
	if bufRecords <= 0 {
		bufRecords = common.DefaultBufferRecords
	}
	return &Reader{r: r, buf: make([]byte, bufRecords*RecordSize)}
}

// Next devuelve el siguiente registro. Cuando devuelve false hay que
// consultar Err para distinguir fin de archivo de un error.
func (r *Reader) Next() (int32, bool) {
	if r.j-r.i < RecordSize {
		if !r.fill() {
			return 0, false
		}
	}
	v := int32(byteOrder.Uint32(r.buf[r.i:]))
	r.i += RecordSize
	return v, true
}

// Err devuelve el primer error distinto de EOF.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) fill() bool {
	if r.err != nil {
		return false
	}
	// Mover el fragmento sin consumir al principio del buffer
	rest := copy(r.buf, r.buf[r.i:r.j])
	r.i, r.j = 0, rest
	for r.j < RecordSize && !r.eof {
		n, err := io.ReadFull(r.r, r.buf[r.j:])
		r.j += n
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.eof = true
		} else if err != nil {
			r.err = err
			return false
		}
	}
	if r.j < RecordSize {
		if r.j > 0 {
			r.err = common.ErrPartialRecord
		}
		return false
	}
	return true
}

// ==========================================
// ESCRITOR CON BUFFER
// ==========================================

// Writer acumula registros y los escribe en bloques de bufRecords.
type Writer struct {
	w       io.Writer
	buf     []byte
	n       int // registros en buf
	written int64
}

func NewWriter(w io.Writer, bufRecords int) *Writer {
	if bufRecords <= 0 {
		bufRecords = common.DefaultBufferRecords
	}
	return &Writer{w: w, buf: make([]byte, bufRecords*RecordSize)}
}

func (w *Writer) Write(v int32) error {
	if w.n*RecordSize == len(w.buf) {
		if err := w.Flush(); err != nil {
			return err
		}
	}
	byteOrder.PutUint32(w.buf[w.n*RecordSize:], uint32(v))
	w.n++
	w.written++
	return nil
}

func (w *Writer) WriteAll(recs []int32) error {
	for _, v := range recs {
		if err := w.Write(v); err != nil {
			return err
		}
	}
	return nil
}

// Flush escribe los registros pendientes.
func (w *Writer) Flush() error {
	if w.n == 0 {
		return nil
	}
	_, err := w.w.Write(w.buf[:w.n*RecordSize])
	w.n = 0
	return err
}

// Written devuelve la cantidad de registros aceptados hasta ahora.
func (w *Writer) Written() int64 {
	return w.written
}
