package main

import (
	"context"
	"fmt"
	"time"

	"github.com/elbader17/quire/internal/config"
	"github.com/elbader17/quire/internal/logging"
	"github.com/elbader17/quire/pkg/quire"
	"github.com/elbader17/quire/pkg/workshop"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		bootLogger := logging.NewWithComponent(logging.Config{Pretty: true}, "example")
		bootLogger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger := logging.NewWithComponent(logging.Config{Level: cfg.Log.Level, Pretty: true}, "example")

	qc, err := cfg.Quire()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build database config")
	}
	db, err := quire.New(qc, quire.WithLogger(logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create database")
	}
	defer func() { _ = db.Close() }()

	store := workshop.New(db)

	status := store.Health(ctx)
	if !status.Connected {
		logger.Fatal().Str("backend", status.Backend).Str("error", status.Error).Msg("Backend unavailable")
	}

	created := store.Customers.Create(ctx, workshop.Customer{
		ID:        "c-" + time.Now().Format("20060102150405"),
		FirstName: "Hodan",
		LastName:  "Ali",
		Phone:     "252617000000",
	})
	if err := created.Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create customer")
	}

	// The builder works the same way without the facade.
	active := quire.From[workshop.Vehicle](db, workshop.VehiclesTable).
		Select("id", "make", "model", "year").
		Eq("status", "active").
		Limit(10).
		Start(ctx)

	pending := store.WorkOrders.ByStatus(ctx, workshop.StatusPending)
	if err := pending.Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to list work orders")
	}

	vehicles := active.Await()
	if err := vehicles.Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to list vehicles")
	}

	if created.Data != nil {
		fmt.Printf("Created customer %s\n", created.Data.ID)
	}
	fmt.Printf("Found %d active vehicles:\n", len(vehicles.Data))
	for _, v := range vehicles.Data {
		fmt.Printf("  - %s %s %s (%d)\n", v.ID, v.Make, v.Model, v.Year)
	}
	fmt.Printf("%d pending work orders\n", len(pending.Data))
}
