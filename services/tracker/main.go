// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/asap007/ExpenseTracker/pkg/logging"
	"github.com/asap007/ExpenseTracker/services/insight"
	"github.com/asap007/ExpenseTracker/services/tracker/analytics"
	"github.com/asap007/ExpenseTracker/services/tracker/config"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
	"github.com/asap007/ExpenseTracker/services/tracker/routes"
	"github.com/asap007/ExpenseTracker/services/tracker/store"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("tracker-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logging.Setup(logging.Config{Service: "tracker"})

	if cfg.OTLPEndpoint != "" {
		cleanup, err := initTracer(cfg.OTLPEndpoint)
		if err != nil {
			log.Fatalf("failed to setup the OTLP tracer: %v", err)
		}
		defer cleanup(context.Background())
	} else {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set. Tracing spans stay local.")
	}

	if cfg.SessionSecret == "" {
		log.Fatalf("SESSION_SECRET is required to validate session tokens")
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open the tracker database: %v", err)
	}
	defer st.Close()
	if err := st.Seed(context.Background()); err != nil {
		log.Fatalf("failed to seed default categories: %v", err)
	}

	log.Println("Configuring the insight client")
	insightClient, err := insight.NewOpenAIClient()
	if err != nil {
		log.Fatalf("Failed to initialize the insight client: %v", err)
	}

	svc := analytics.NewService(st, insightClient, cfg.ServiceConfig())
	verifier := middleware.NewJWTVerifier([]byte(cfg.SessionSecret))

	router := gin.Default()
	router.Use(otelgin.Middleware("tracker-service"))
	routes.SetupRoutes(router, svc, st, verifier)

	log.Println("Starting the tracker server on port ", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
