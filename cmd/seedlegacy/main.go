// cmd/seedlegacy/main.go: Escribe un set de datos de la app anterior en el
// área legacy para probar la migración.
// Uso: go run ./cmd/seedlegacy [-force]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/config"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/infra"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/kv"
	"github.com/salazaroliveros-prog/billar-finanzas/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type record = map[string]any

func main() {
	force := flag.Bool("force", false, "sobrescribir datos legacy existentes")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Fatal().Msg("STORE_DRIVER=memory no persiste; use redis o postgres")
	}

	open, err := infra.Opener(cfg, cfg.LegacyPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure store")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := open(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open legacy store")
	}
	defer store.Close()

	if !*force {
		if _, ok, err := store.Get(ctx, repository.LegacyProductsKey); err != nil {
			log.Fatal().Err(err).Msg("failed to read legacy store")
		} else if ok {
			log.Fatal().Msg("ya hay datos legacy; use -force para sobrescribir")
		}
	}

	now := time.Now()
	data := map[string][]record{
		repository.LegacyProductsKey: legacyProducts(),
		repository.LegacySalesKey:    legacySales(now),
		repository.LegacyTablesKey:   legacyTables(now),
	}
	for key, records := range data {
		if err := kv.PutJSON(ctx, store, key, records); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("write failed")
		}
		log.Info().Str("key", cfg.LegacyPrefix+key).Int("records", len(records)).Msg("legacy collection written")
	}
	log.Info().Msg("listo: el próximo arranque con estado vacío migrará estos datos")
}

// The old app stored loosely-typed values: numbers as strings with comma
// decimals, dates in several layouts.
func legacyProducts() []record {
	return []record{
		{"nombre": "Coca-Cola 600ml", "categoria": "bebida", "costo": "6,50", "precio": "10", "stock": 24, "stockMinimo": 6},
		{"nombre": "Cerveza Gallo", "categoria": "bebida", "costo": 9, "precio": 15, "stock": "36", "stockMinimo": "12"},
		{"nombre": "Tiza azul", "categoria": "accesorio", "costo": "1.25", "precio": "3", "stock": 50},
		{"nombre": "Papas fritas", "costo": 4, "precio": 3, "stock": 10},
		{"nombre": "", "costo": 1, "precio": 2},
	}
}

func legacySales(now time.Time) []record {
	return []record{
		{"producto": "Coca-Cola 600ml", "cantidad": 2, "precio": "10", "fecha": now.Add(-72 * time.Hour).Format("2006-01-02 15:04:05")},
		{"producto": "Cerveza Gallo", "cantidad": "3", "total": "45", "ganancia": "18", "fecha": now.Add(-48 * time.Hour).UnixMilli()},
		{"producto": "Maní salado", "cantidad": 1, "precio": "5", "fecha": now.Add(-24 * time.Hour).Format(time.RFC3339)},
	}
}

func legacyTables(now time.Time) []record {
	return []record{
		{"mesa": 1, "jugadores": 2, "tarifa": "15", "inicio": now.Add(-45 * time.Minute).Format(time.RFC3339), "activa": true},
		{"mesa": "2", "jugadores": "4", "tarifa": "12,50", "inicio": now.Add(-10 * time.Minute).UnixMilli()},
		{"mesa": 3, "jugadores": 2, "tarifa": 15, "inicio": now.Add(-5 * time.Hour).Format(time.RFC3339), "activa": false},
	}
}
