// snapshot exporta o importa el documento de datos sin levantar la API.
//
// Uso:
//
//	go run ./cmd/snapshot -export devis.json
//	go run ./cmd/snapshot -import devis.json [-charset iso-8859-1|windows-1252]
//
// Usa el backend configurado (STORAGE_BACKEND, STORAGE_KEY, ...). Un snapshot
// inválido no modifica los datos almacenados.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/infrastructure/backend"
	"github.com/jhoicas/devis-api/pkg/config"
	"github.com/jhoicas/devis-api/pkg/logger"
)

const timeout = 30 * time.Second

func main() {
	exportPath := flag.String("export", "", "archivo de salida del snapshot")
	importPath := flag.String("import", "", "archivo de snapshot a importar")
	charset := flag.String("charset", "utf-8", "codificación del archivo importado: utf-8, iso-8859-1, windows-1252")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "indique exactamente uno de -export o -import")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Out: os.Stderr})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("abrir almacenamiento")
	}
	defer b.Close()

	store := storage.NewStore(b.KV, storage.Options{
		Key:           cfg.Storage.Key,
		CapacityBytes: cfg.Storage.CapacityBytes,
		Logger:        log.Component("storage"),
	})

	if *exportPath != "" {
		err = exportTo(ctx, store, *exportPath)
	} else {
		err = importFrom(ctx, store, *importPath, *charset)
	}
	if err != nil {
		log.Error().Err(err).Msg("snapshot")
		b.Close()
		os.Exit(1)
	}
}

func exportTo(ctx context.Context, store *storage.Store, path string) error {
	data, err := store.ExportSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", path, err)
	}
	fmt.Printf("Snapshot exportado: %s (%d bytes)\n", path, len(data))
	return nil
}

func importFrom(ctx context.Context, store *storage.Store, path, charset string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()

	data, err := decode(f, charset)
	if err != nil {
		return err
	}
	if err := store.ImportSnapshot(ctx, data); err != nil {
		return err
	}
	fmt.Printf("Snapshot importado: %s\n", path)
	return nil
}

// decode convierte a UTF-8 los snapshots guardados con codificaciones heredadas.
func decode(r io.Reader, charset string) ([]byte, error) {
	switch strings.ToLower(strings.ReplaceAll(charset, "_", "-")) {
	case "", "utf-8", "utf8":
	case "iso-8859-1", "iso8859-1", "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252", "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada: %q", charset)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("leer snapshot: %w", err)
	}
	return data, nil
}
