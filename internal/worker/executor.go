package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"extsort/internal/common"
	"extsort/internal/config"
	"extsort/internal/storage"
)

// Executor ejecuta las tareas SORT y MERGE sobre un SegmentStore.
type Executor struct {
	store          *storage.SegmentStore
	segmentRecords int
	bufferRecords  int
	fanIn          int
	log            *zap.Logger
}

func NewExecutor(store *storage.SegmentStore, cfg config.Config, logger *zap.Logger) *Executor {
	return &Executor{
		store:          store,
		segmentRecords: cfg.SegmentRecords,
		bufferRecords:  cfg.BufferRecords,
		fanIn:          cfg.FanIn,
		log:            logger.Named("executor"),
	}
}

// Execute corre la tarea y arma su reporte. Nunca devuelve error: el fallo
// viaja en el reporte hasta el coordinador.
func (e *Executor) Execute(ctx context.Context, task common.Task) common.TaskReport {
	start := time.Now()
	e.log.Debug("iniciando tarea",
		zap.String("task_id", task.TaskID),
		zap.String("op", task.Op),
		zap.Int("inputs", len(task.Inputs)),
		zap.Int64("records", common.SumRecords(task.Inputs)))

	out, err := e.execute(ctx, task)

	report := common.TaskReport{
		TaskID:     task.TaskID,
		Op:         task.Op,
		Inputs:     task.Inputs,
		Timestamp:  start.Unix(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		report.Status = common.TaskStatusFailure
		report.ErrorMsg = err.Error()
		report.Err = err
		// Un merge que falló al borrar entradas deja una salida completa
		report.Output = out
		e.log.Warn("tarea falló", zap.String("task_id", task.TaskID), zap.Error(err))
		return report
	}
	report.Status = common.TaskStatusSuccess
	report.Output = out
	e.log.Debug("tarea terminada",
		zap.String("task_id", task.TaskID),
		zap.String("output", out.ID),
		zap.Int64("duration_ms", report.DurationMS))
	return report
}

func (e *Executor) execute(ctx context.Context, task common.Task) (common.Segment, error) {
	if err := ctx.Err(); err != nil {
		return common.Segment{}, err
	}
	switch task.Op {
	case common.OpSort:
		if len(task.Inputs) != 1 {
			return common.Segment{}, fmt.Errorf("SORT espera 1 segmento, recibió %d", len(task.Inputs))
		}
		return SortSegment(ctx, e.store, task.Inputs[0], e.segmentRecords, e.bufferRecords)
	case common.OpMerge:
		return MergeSegments(ctx, e.store, task.Inputs, e.fanIn, e.bufferRecords)
	default:
		return common.Segment{}, fmt.Errorf("operación no soportada: %s", task.Op)
	}
}
