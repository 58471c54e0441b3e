// Package config define los parámetros de ajuste del ordenamiento externo
// y su carga desde un archivo YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v2"

	"extsort/internal/common"
)

// Descriptores reservados para stdin/stdout/stderr, logs y la entrada.
const reservedDescriptors = 16

type Config struct {
	// Directorio donde viven todos los segmentos temporales
	TempDir string `yaml:"tempDir"`
	// Registros por buffer de lectura/escritura
	BufferRecords int `yaml:"bufferRecords"`
	// Registros por segmento; acota la memoria del Splitter y del Sorter
	SegmentRecords int `yaml:"segmentRecords"`
	// Segmentos mezclados por tarea; acota los descriptores abiertos
	FanIn int `yaml:"fanIn"`
	// Tamaño del pool de workers
	Workers int `yaml:"workers"`
}

// Default devuelve la configuración por defecto.
func Default() Config {
	return Config{
		TempDir:        filepath.Join(os.TempDir(), "extsort"),
		BufferRecords:  common.DefaultBufferRecords,
		SegmentRecords: common.DefaultSegmentRecords,
		FanIn:          common.DefaultFanIn,
		Workers:        runtime.NumCPU(),
	}
}

// Load lee un archivo YAML sobre los valores por defecto.
// Los campos ausentes conservan su valor por defecto.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("no se pudo leer la configuración %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("configuración inválida en %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate verifica que los parámetros tengan sentido.
func (c Config) Validate() error {
	switch {
	case c.TempDir == "":
		return fmt.Errorf("tempDir no puede estar vacío")
	case c.BufferRecords <= 0:
		return fmt.Errorf("bufferRecords debe ser positivo (%d)", c.BufferRecords)
	case c.SegmentRecords <= 0:
		return fmt.Errorf("segmentRecords debe ser positivo (%d)", c.SegmentRecords)
	case c.FanIn < common.MinFanIn:
		return fmt.Errorf("fanIn debe ser al menos %d (%d)", common.MinFanIn, c.FanIn)
	case c.Workers <= 0:
		return fmt.Errorf("workers debe ser positivo (%d)", c.Workers)
	}
	return nil
}

// ClampFanIn reduce FanIn para que Workers tareas de merge simultáneas
// (FanIn entradas + 1 salida cada una) entren en el límite de descriptores.
// Devuelve la configuración ajustada y si hubo cambios.
func (c Config) ClampFanIn(limit uint64) (Config, bool) {
	if limit == 0 || c.Workers <= 0 {
		return c, false
	}
	need := uint64(c.Workers)*uint64(c.FanIn+1) + reservedDescriptors
	if need <= limit {
		return c, false
	}
	fanIn := common.MinFanIn
	if limit > reservedDescriptors {
		perTask := (limit - reservedDescriptors) / uint64(c.Workers)
		if perTask > uint64(common.MinFanIn+1) {
			fanIn = int(perTask - 1)
		}
	}
	if fanIn >= c.FanIn {
		return c, false
	}
	c.FanIn = fanIn
	return c, true
}
