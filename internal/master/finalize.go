package master

import (
	"errors"

	"github.com/spf13/afero"

	"extsort/internal/common"
)

var errIsDirectory = errors.New("la salida es un directorio")

// Finalize instala el último segmento en la ruta de salida: si ya existe un
// archivo ahí lo borra y después renombra el segmento. No es atómico: entre
// el borrado y el renombrado la salida no existe.
func Finalize(fs afero.Fs, seg common.Segment, output string) error {
	// 1. Borrar la salida previa si existe
	info, err := fs.Stat(output)
	if err == nil {
		if info.IsDir() {
			return &common.FinalizeError{Src: seg.Path, Dst: output, Err: errIsDirectory}
		}
		if err := fs.Remove(output); err != nil {
			return &common.FinalizeError{Src: seg.Path, Dst: output, Err: err}
		}
	}

	// 2. Mover el segmento a su lugar
	if err := fs.Rename(seg.Path, output); err != nil {
		return &common.FinalizeError{Src: seg.Path, Dst: output, Err: err}
	}
	return nil
}
