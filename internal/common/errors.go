package common

import (
	"errors"
	"fmt"
)

var (
	// El archivo de entrada no existe o no es un archivo regular.
	ErrInputNotFound = errors.New("archivo de entrada no encontrado")
	// El tamaño del archivo no es múltiplo del ancho de registro.
	ErrPartialRecord = errors.New("registro incompleto al final del archivo")
	// Se pidió mezclar más segmentos que el fan-in permitido.
	ErrFanInExceeded = errors.New("cantidad de segmentos supera el fan-in")
	// El pool ya fue cerrado en la barrera y no acepta más tareas.
	ErrPoolClosed = errors.New("pool de workers cerrado")
	// El segmento final no tiene la misma cantidad de registros que la entrada.
	ErrRecordCountMismatch = errors.New("cantidad de registros no coincide")
)

// IOError envuelve cualquier fallo de lectura/escritura sobre un segmento.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("error de I/O (%s) en %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError devuelve nil si err es nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// FinalizeError indica que no se pudo instalar el último segmento como salida.
type FinalizeError struct {
	Src string
	Dst string
	Err error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("no se pudo mover %q a %q: %v", e.Src, e.Dst, e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }
