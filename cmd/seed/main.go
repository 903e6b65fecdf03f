// seed carga el catálogo de la cantina a partir de un CSV separado por ';'.
//
// Uso: go run ./cmd/seed [-encoding latin1|utf8] productos.csv
// Filas: codigo;nombre;precio[;stock]. La primera línea puede ser cabecera.
// Los códigos ya registrados se omiten; el stock inicial entra por el motor de inventario.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Cantina-api/internal/application/catalog"
	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/domain"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/storage"
	"github.com/jhoicas/Cantina-api/pkg/config"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

func main() {
	encoding := flag.String("encoding", "utf8", "codificación del archivo: utf8 | latin1")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-encoding latin1|utf8] productos.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("STORAGE_DRIVER=memory: la carga solo vive mientras dura el proceso")
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := readRows(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()

	locks := keylock.New()
	s := seeder{
		catalog: catalog.NewUseCase(backend.Products, backend.Tx, locks, log),
		engine:  inventory.NewEngine(backend.Tx, locks, log),
		log:     log,
	}
	res := s.load(ctx, rows)
	log.Info().
		Int("registrados", res.created).
		Int("omitidos", res.skipped).
		Int("errores", res.failed).
		Msg("carga de catálogo finalizada")
	if res.failed > 0 {
		os.Exit(1)
	}
}

type seedResult struct {
	created, skipped, failed int
}

type seeder struct {
	catalog *catalog.UseCase
	engine  *inventory.Engine
	log     *logger.Logger
}

func (s seeder) load(ctx context.Context, rows []row) seedResult {
	var res seedResult
	for _, r := range rows {
		if _, err := s.catalog.Register(ctx, r.code, r.name, r.price); err != nil {
			if errors.Is(err, domain.ErrDuplicateCode) {
				s.log.Warn().Int64("code", r.code).Int("line", r.line).Msg("código ya registrado, se omite")
				res.skipped++
				continue
			}
			s.log.Error().Err(err).Int64("code", r.code).Int("line", r.line).Msg("registrar producto")
			res.failed++
			continue
		}
		res.created++
		if r.stock > 0 {
			if _, err := s.engine.StockEntry(ctx, r.code, r.stock); err != nil {
				s.log.Error().Err(err).Int64("code", r.code).Int("line", r.line).Msg("stock inicial")
				res.failed++
			}
		}
	}
	return res
}
