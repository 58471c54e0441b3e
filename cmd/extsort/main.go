package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"extsort/internal/config"
	"extsort/internal/master"
	"extsort/internal/verify"
)

func main() {
	// se definen los flags
	configPath := pflag.StringP("config", "c", "", "archivo YAML de configuración")
	tempDir := pflag.StringP("tmp-dir", "t", "", "directorio para los segmentos temporales")
	workers := pflag.IntP("workers", "w", 0, "tamaño del pool de workers (0 = por defecto)")
	fanIn := pflag.IntP("fan-in", "k", 0, "segmentos mezclados por tarea (>= 2)")
	segmentRecords := pflag.Int("segment-records", 0, "registros por segmento")
	bufferRecords := pflag.Int("buffer-records", 0, "registros por buffer de I/O")
	check := pflag.Bool("verify", false, "verificar la salida contra la entrada al terminar")
	verbose := pflag.BoolP("verbose", "v", false, "logs de depuración")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "uso: %s [flags] ENTRADA SALIDA\n", filepath.Base(os.Args[0]))
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(1)
	}
	input, output := pflag.Arg(0), pflag.Arg(1)

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no se pudo crear el logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 1. Configuración: archivo (opcional) y luego flags
	cfg := config.Default()
	if *configPath != "" {
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal("configuración inválida", zap.Error(err))
		}
	}
	if *tempDir != "" {
		cfg.TempDir = *tempDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *fanIn > 0 {
		cfg.FanIn = *fanIn
	}
	if *segmentRecords > 0 {
		cfg.SegmentRecords = *segmentRecords
	}
	if *bufferRecords > 0 {
		cfg.BufferRecords = *bufferRecords
	}

	// 2. Respetar el límite de descriptores abiertos
	if limit, err := config.DescriptorLimit(); err != nil {
		logger.Warn("no se pudo leer RLIMIT_NOFILE", zap.Error(err))
	} else if clamped, changed := cfg.ClampFanIn(limit); changed {
		logger.Warn("fan-in reducido por el límite de descriptores",
			zap.Int("fan_in", cfg.FanIn),
			zap.Int("clamped", clamped.FanIn),
			zap.Uint64("nofile", limit))
		cfg = clamped
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Ordenar
	res, err := master.Sort(ctx, input, output, cfg, logger)
	if err != nil {
		logger.Error("el ordenamiento falló", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("listo",
		zap.String("run_id", res.RunID),
		zap.Int64("records", res.InputRecords),
		zap.Int("segments", res.Segments),
		zap.Int("merge_tasks", res.MergeTasks),
		zap.Int("rounds", res.Rounds),
		zap.Duration("elapsed", res.Duration))

	// 4. Verificación opcional
	if *check {
		if err := verify.Compare(ctx, afero.NewOsFs(), input, output, cfg.BufferRecords); err != nil {
			logger.Error("verificación fallida", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("salida verificada")
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
