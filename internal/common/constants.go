package common

// --- Constantes de operaciones, estados y valores por defecto ---

// Tipos de tarea (Task.Op)
const (
	OpSort  = "SORT"  // Ordenar un segmento en memoria y reescribirlo
	OpMerge = "MERGE" // Mezclar K segmentos ordenados en uno nuevo

	// Estados de un segmento (Segment.State)
	SegmentUnsorted = "UNSORTED"
	SegmentSorted   = "SORTED"

	// Estados de una Tarea (TaskReport.Status)
	TaskStatusSuccess = "SUCCESS"
	TaskStatusFailure = "FAILURE"
)

// Parámetros de ajuste por defecto
const (
	// registros por buffer de I/O
	DefaultBufferRecords = 4096
	// registros por segmento: más es más rápido pero usa más memoria (2MB)
	DefaultSegmentRecords = 4096 * 128
	// segmentos mezclados a la vez; no bajar de 2
	DefaultFanIn = 16
	MinFanIn     = 2

	// Prefijo y sufijo de los archivos temporales de segmento
	SegmentFilePrefix = "extsort-"
	SegmentFileSuffix = ".seg"
)
