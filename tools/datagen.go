package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"extsort/internal/codec"
)

func main() {
	out := pflag.StringP("out", "o", "data/inputs/ints.bin", "archivo de salida")
	count := pflag.IntP("count", "n", 1<<20, "cantidad de registros")
	seed := pflag.Int64("seed", 1, "semilla del generador")
	spread := pflag.Int("spread", 0, "rango de valores [-spread/2, spread/2); 0 = int32 completo")
	sorted := pflag.Bool("sorted", false, "generar la entrada ya ordenada (ascendente)")
	pflag.Parse()

	os.MkdirAll(filepath.Dir(*out), 0755)
	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no se pudo crear %s: %v\n", *out, err)
		os.Exit(1)
	}
	defer f.Close()

	// Generamos registros int32 little-endian en bloques
	fmt.Printf("Generando %s (%d registros) ...\n", *out, *count)
	bw := bufio.NewWriter(f)
	w := codec.NewWriter(bw, 4096)
	rnd := rand.New(rand.NewSource(*seed))
	for i := 0; i < *count; i++ {
		var v int32
		switch {
		case *sorted:
			v = int32(i)
		case *spread > 0:
			v = int32(rnd.Intn(*spread) - *spread/2)
		default:
			v = int32(rnd.Uint32())
		}
		if err := w.Write(v); err != nil {
			fmt.Fprintf(os.Stderr, "error escribiendo: %v\n", err)
			os.Exit(1)
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error escribiendo: %v\n", err)
		os.Exit(1)
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error escribiendo: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(" Datos generados exitosamente.")
}
