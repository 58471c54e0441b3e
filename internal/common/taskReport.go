package common

type TaskReport struct {
	TaskID   string `json:"task_id"`
	Op       string `json:"op"`
	Status   string `json:"status"` // SUCCESS o FAILURE
	ErrorMsg string `json:"error_msg"`
	// Error original, para errors.Is/As en el coordinador
	Err error `json:"-"`
	// Segmentos que la tarea recibió y segmento resultante (listo para la cola)
	Inputs     []Segment `json:"inputs"`
	Output     Segment   `json:"output"`
	Timestamp  int64     `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
}

// Failed indica si la tarea terminó con error.
func (r TaskReport) Failed() bool {
	return r.Status != TaskStatusSuccess
}
