package master

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"extsort/internal/common"
	"extsort/internal/config"
	"extsort/internal/storage"
	"extsort/internal/worker"
)

// State es la fase en la que está el coordinador.
type State string

const (
	StateCutting State = "CUTTING"
	StateSorting State = "SORTING"
	StateMerging State = "MERGING"
	StateDone    State = "DONE"
)

// Result resume una ejecución.
type Result struct {
	RunID        string        `json:"run_id"`
	InputRecords int64         `json:"input_records"`
	Segments     int           `json:"segments"`
	SortTasks    int           `json:"sort_tasks"`
	MergeTasks   int           `json:"merge_tasks"`
	Rounds       int           `json:"rounds"`
	Duration     time.Duration `json:"duration"`
	// Segmentos que quedaron en el directorio temporal tras un error
	Leftover []string `json:"leftover,omitempty"`
}

// Coordinator lleva la cola de segmentos listos y reparte tareas SORT y
// MERGE en el pool hasta que queda un único segmento ordenado.
// La cola solo se toca desde la goroutine que llama a Run.
type Coordinator struct {
	cfg   config.Config
	fs    afero.Fs
	log   *zap.Logger
	runID string

	store *storage.SegmentStore
	exec  *worker.Executor

	state    State
	ready    []common.Segment // Cola FIFO de segmentos ordenados
	taskSeq  int
	firstErr error
	result   Result
}

// NewCoordinator valida la configuración y prepara el directorio temporal.
func NewCoordinator(cfg config.Config, fs afero.Fs, logger *zap.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New().String()
	store, err := storage.NewSegmentStore(fs, cfg.TempDir, runID)
	if err != nil {
		return nil, err
	}
	log := logger.Named("coordinator").With(zap.String("run_id", runID))
	return &Coordinator{
		cfg:    cfg,
		fs:     fs,
		log:    log,
		runID:  runID,
		store:  store,
		exec:   worker.NewExecutor(store, cfg, logger),
		result: Result{RunID: runID},
	}, nil
}

// Sort ordena input en output sobre el sistema de archivos del SO.
func Sort(ctx context.Context, input, output string, cfg config.Config, logger *zap.Logger) (*Result, error) {
	c, err := NewCoordinator(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, input, output)
}

func (c *Coordinator) State() State { return c.state }

func (c *Coordinator) RunID() string { return c.runID }

// Run ejecuta el ordenamiento completo. Cualquier fallo de una tarea aborta
// la ejecución; no hay salida parcial.
func (c *Coordinator) Run(ctx context.Context, input, output string) (*Result, error) {
	start := time.Now()
	defer func() { c.result.Duration = time.Since(start) }()

	records, err := worker.CheckInput(c.fs, input)
	if err != nil {
		return &c.result, err
	}
	c.result.InputRecords = records
	c.log.Info("ordenamiento iniciado",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int64("records", records),
		zap.Int("workers", c.cfg.Workers),
		zap.Int("fan_in", c.cfg.FanIn))

	// 1. Cortar y ordenar cada segmento
	if err := c.cutAndSort(ctx, input); err != nil {
		return c.abort(err)
	}

	// 2. Mezclar hasta que quede uno
	if err := c.mergeAll(ctx); err != nil {
		return c.abort(err)
	}

	// 3. Instalar la salida
	c.state = StateDone
	last := c.ready[0]
	if last.Records != records {
		return c.abort(fmt.Errorf("%w: salida %d, entrada %d", common.ErrRecordCountMismatch, last.Records, records))
	}
	if err := Finalize(c.fs, last, output); err != nil {
		return c.abort(err)
	}
	c.store.Release(last)
	c.ready = nil

	c.log.Info("ordenamiento terminado",
		zap.Int("segments", c.result.Segments),
		zap.Int("merge_tasks", c.result.MergeTasks),
		zap.Int("rounds", c.result.Rounds),
		zap.Duration("elapsed", time.Since(start)))
	return &c.result, nil
}

// ==========================================
// CUTTING / SORTING
// ==========================================

func (c *Coordinator) cutAndSort(ctx context.Context, input string) error {
	c.state = StateCutting
	pool := worker.NewPool(ctx, c.cfg.Workers, c.exec.Execute, c.log)

	splitter := worker.NewSplitter(c.store, input, c.cfg.SegmentRecords, c.log)
	for seg, err := range splitter.Segments(ctx) {
		if err != nil {
			c.fail(err)
			break
		}
		c.result.Segments++
		if !c.submit(pool, common.OpSort, []common.Segment{seg}) {
			break
		}
		c.result.SortTasks++
		c.drain(pool)
		if c.firstErr != nil {
			break
		}
	}

	// Barrera: el pool de ordenamiento se retira acá
	c.state = StateSorting
	pool.Join(c.collect)
	c.log.Debug("segmentos ordenados", zap.Int("segments", len(c.ready)))
	return c.firstErr
}

// ==========================================
// MERGING
// ==========================================

func (c *Coordinator) mergeAll(ctx context.Context) error {
	c.state = StateMerging
	for len(c.ready) > 1 {
		c.result.Rounds++
		pool := worker.NewPool(ctx, c.cfg.Workers, c.exec.Execute, c.log)

		for c.firstErr == nil {
			if err := ctx.Err(); err != nil {
				c.fail(err)
				break
			}
			// Incorporar lo que ya terminó antes de decidir
			c.drain(pool)
			if len(c.ready) <= 1 || c.firstErr != nil {
				break
			}
			n := min(c.cfg.FanIn, len(c.ready))
			batch := c.ready[:n:n]
			c.ready = c.ready[n:]
			if !c.submit(pool, common.OpMerge, batch) {
				break
			}
			c.result.MergeTasks++
		}

		// Barrera: esperar todos los merges en vuelo y retirar el pool
		pool.Join(c.collect)
		if c.firstErr != nil {
			return c.firstErr
		}
		c.log.Debug("ronda de merge terminada",
			zap.Int("round", c.result.Rounds),
			zap.Int("ready", len(c.ready)))
	}
	if len(c.ready) != 1 {
		return fmt.Errorf("se esperaba 1 segmento al terminar, hay %d", len(c.ready))
	}
	return nil
}

// ==========================================
// HELPERS
// ==========================================

// submit arma la tarea y la envía al pool. Devuelve false si no se pudo.
func (c *Coordinator) submit(pool *worker.Pool, op string, inputs []common.Segment) bool {
	c.taskSeq++
	task := common.Task{
		TaskID: common.NewTaskID(c.runID, op, c.taskSeq),
		RunID:  c.runID,
		Op:     op,
		Inputs: inputs,
	}
	if err := pool.Submit(task); err != nil {
		// Los segmentos vuelven a la cola para que nada quede sin dueño
		c.ready = append(c.ready, inputs...)
		c.fail(err)
		return false
	}
	return true
}

// drain recoge sin bloquear los reportes que ya llegaron.
func (c *Coordinator) drain(pool *worker.Pool) {
	for {
		report, ok := pool.TryCollect()
		if !ok {
			return
		}
		c.collect(report)
	}
}

// collect es el único lugar donde la cola recibe segmentos de las tareas.
func (c *Coordinator) collect(report common.TaskReport) {
	if report.Failed() {
		err := report.Err
		if err == nil {
			err = errors.New(report.ErrorMsg)
		}
		c.fail(fmt.Errorf("tarea %s (%s) falló: %w", report.TaskID, report.Op, err))
		return
	}
	c.ready = append(c.ready, report.Output)
}

func (c *Coordinator) fail(err error) {
	if c.firstErr == nil {
		c.firstErr = err
	}
}

// abort registra los segmentos que quedaron en disco y devuelve el error.
func (c *Coordinator) abort(err error) (*Result, error) {
	for _, seg := range c.store.Live() {
		c.result.Leftover = append(c.result.Leftover, seg.Path)
	}
	c.log.Error("ordenamiento abortado",
		zap.String("state", string(c.state)),
		zap.Strings("leftover", c.result.Leftover),
		zap.Error(err))
	return &c.result, err
}
