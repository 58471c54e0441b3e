package common

import "fmt"

type Task struct {
	TaskID string    `json:"task_id"`
	RunID  string    `json:"run_id"`
	Op     string    `json:"op"`     // OpSort u OpMerge
	Inputs []Segment `json:"inputs"` // La tarea es dueña exclusiva de estos segmentos hasta reportar
}

// NewTaskID arma un ID legible: <run>-<op>-<secuencia>
func NewTaskID(runID, op string, seq int) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s-%s-%d", short, op, seq)
}
