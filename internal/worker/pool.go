package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"extsort/internal/common"
)

// ==========================================
// POOL DE WORKERS
// ==========================================

// RunFunc ejecuta una tarea y siempre devuelve un reporte (éxito o fallo).
type RunFunc func(ctx context.Context, task common.Task) common.TaskReport

// Pool ejecuta tareas con concurrencia acotada por un semáforo y entrega
// los reportes por un único canal. Se usa una ronda y se retira: después de
// Close no acepta más tareas. Submit, TryCollect, Close y Join deben
// llamarse desde una sola goroutine (el coordinador).
type Pool struct {
	ctx       context.Context
	size      int
	semaphore chan struct{} // Limita cuántas tareas corren a la vez
	results   chan common.TaskReport
	run       RunFunc
	inflight  int
	closed    bool
	log       *zap.Logger
}

// NewPool crea un pool con size workers.
func NewPool(ctx context.Context, size int, run RunFunc, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = 1
	}
	logger.Named("pool").Debug("pool inicializado", zap.Int("workers", size))
	return &Pool{
		ctx:       ctx,
		size:      size,
		semaphore: make(chan struct{}, size),
		results:   make(chan common.TaskReport),
		run:       run,
		log:       logger.Named("pool"),
	}
}

// Submit encola la tarea sin bloquear; la tarea espera un lugar libre.
func (p *Pool) Submit(task common.Task) error {
	if p.closed {
		return fmt.Errorf("%w: tarea %s rechazada", common.ErrPoolClosed, task.TaskID)
	}
	p.inflight++
	go func() {
		p.semaphore <- struct{}{} // Adquirir token (bloquea si está lleno)
		report := p.safeRun(task)
		<-p.semaphore // Liberar token antes de entregar el reporte
		p.results <- report
	}()
	return nil
}

// safeRun convierte un panic de la tarea en un reporte de fallo.
func (p *Pool) safeRun(task common.Task) (report common.TaskReport) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic en tarea %s: %v", task.TaskID, r)
			p.log.Error("tarea abortada", zap.String("task_id", task.TaskID), zap.Error(err))
			report = common.TaskReport{
				TaskID:    task.TaskID,
				Op:        task.Op,
				Status:    common.TaskStatusFailure,
				ErrorMsg:  err.Error(),
				Err:       err,
				Inputs:    task.Inputs,
				Timestamp: time.Now().Unix(),
			}
		}
	}()
	return p.run(p.ctx, task)
}

// TryCollect devuelve un reporte si alguna tarea ya terminó, sin bloquear.
func (p *Pool) TryCollect() (common.TaskReport, bool) {
	if p.inflight == 0 {
		return common.TaskReport{}, false
	}
	select {
	case report := <-p.results:
		p.inflight--
		return report, true
	default:
		return common.TaskReport{}, false
	}
}

// Close deja de aceptar tareas. Las que están en vuelo siguen corriendo.
func (p *Pool) Close() {
	p.closed = true
}

// Join es la barrera: cierra el pool y bloquea hasta que todas las tareas
// en vuelo terminen, pasando cada reporte a fn en orden de llegada.
func (p *Pool) Join(fn func(common.TaskReport)) {
	p.Close()
	for p.inflight > 0 {
		report := <-p.results
		p.inflight--
		fn(report)
	}
}

func (p *Pool) Size() int { return p.size }

// InFlight devuelve cuántas tareas fueron enviadas y aún no reportaron.
func (p *Pool) InFlight() int { return p.inflight }

func (p *Pool) Closed() bool { return p.closed }
