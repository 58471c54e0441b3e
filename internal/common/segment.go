package common

// Segment contiene la metadata de un archivo temporal con un subconjunto de registros.
type Segment struct {
	ID      string `json:"id"`      // Nombre base del archivo
	Path    string `json:"path"`    // Ruta dentro del directorio temporal
	State   string `json:"state"`   // SegmentUnsorted o SegmentSorted
	Records int64  `json:"records"` // Cantidad de registros en el archivo
}

// SumRecords suma los registros de una lista de segmentos.
func SumRecords(segs []Segment) int64 {
	var n int64
	for _, s := range segs {
		n += s.Records
	}
	return n
}

// Paths devuelve las rutas de los segmentos, en el mismo orden.
func Paths(segs []Segment) []string {
	paths := make([]string, len(segs))
	for i, s := range segs {
		paths[i] = s.Path
	}
	return paths
}
