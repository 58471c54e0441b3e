package config

import (
	"os"
	"path/filepath"
	"testing"

	"extsort/internal/common"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("la configuración por defecto debería ser válida: %v", err)
	}
	if cfg.FanIn != common.DefaultFanIn {
		t.Errorf("FanIn esperado %d, obtenido %d", common.DefaultFanIn, cfg.FanIn)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "OK", mutate: func(c *Config) {}},
		{name: "FanIn_Mínimo", mutate: func(c *Config) { c.FanIn = 2 }},
		{name: "FanIn_Uno", mutate: func(c *Config) { c.FanIn = 1 }, wantErr: true},
		{name: "Buffer_Cero", mutate: func(c *Config) { c.BufferRecords = 0 }, wantErr: true},
		{name: "Segmento_Negativo", mutate: func(c *Config) { c.SegmentRecords = -1 }, wantErr: true},
		{name: "Sin_Workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "TempDir_Vacío", mutate: func(c *Config) { c.TempDir = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, esperaba error=%v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("Parcial", func(t *testing.T) {
		path := filepath.Join(dir, "parcial.yaml")
		content := "tempDir: /data/tmp\nfanIn: 4\nsegmentRecords: 1024\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load falló: %v", err)
		}
		if cfg.TempDir != "/data/tmp" || cfg.FanIn != 4 || cfg.SegmentRecords != 1024 {
			t.Errorf("valores no cargados: %+v", cfg)
		}
		if cfg.BufferRecords != common.DefaultBufferRecords {
			t.Errorf("bufferRecords debería conservar el valor por defecto, obtenido %d", cfg.BufferRecords)
		}
	})

	t.Run("Inválida", func(t *testing.T) {
		path := filepath.Join(dir, "invalida.yaml")
		if err := os.WriteFile(path, []byte("fanIn: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("esperaba error por fanIn < 2")
		}
	})

	t.Run("No_Existe", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "fantasma.yaml")); err == nil {
			t.Error("esperaba error por archivo inexistente")
		}
	})
}

func TestClampFanIn(t *testing.T) {
	tests := []struct {
		name       string
		workers    int
		fanIn      int
		limit      uint64
		wantFanIn  int
		wantChange bool
	}{
		{name: "Sin_Límite", workers: 8, fanIn: 16, limit: 0, wantFanIn: 16},
		{name: "Holgado", workers: 8, fanIn: 16, limit: 1024, wantFanIn: 16},
		{name: "Ajustado", workers: 8, fanIn: 16, limit: 64, wantFanIn: 5, wantChange: true},
		{name: "Piso_Mínimo", workers: 64, fanIn: 16, limit: 32, wantFanIn: 2, wantChange: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Workers = tt.workers
			cfg.FanIn = tt.fanIn
			got, changed := cfg.ClampFanIn(tt.limit)
			if got.FanIn != tt.wantFanIn || changed != tt.wantChange {
				t.Errorf("ClampFanIn(%d) = (%d, %v), esperado (%d, %v)", tt.limit, got.FanIn, changed, tt.wantFanIn, tt.wantChange)
			}
		})
	}
}
