/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Command tableadmin provisions the tables described in a YAML schema file.
// It is the operational companion to the tablestore library: point it at a
// schema definition and a region (or a local endpoint) and it ensures every
// table exists and is ready.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/suparena/tablestore"
	"github.com/suparena/tablestore/datastore/ddb"
	"github.com/suparena/tablestore/schema"
)

var (
	schemasFlag  = flag.String("schemas", "tables.yaml", "Path to the YAML schema definition")
	regionFlag   = flag.String("region", "", "AWS region (defaults to AWS_REGION)")
	endpointFlag = flag.String("endpoint", "", "Optional endpoint override, e.g. http://localhost:8000")
	debugFlag    = flag.Bool("debug", false, "Enable debug logging")
	versionFlag  = flag.Bool("version", false, "Show version information")
	vFlag        = flag.Bool("v", false, "Show version information (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := tablestore.GetVersionInfo()
		fmt.Printf("tablestore tableadmin version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tableadmin: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	logger, err := newLogger(*debugFlag)
	if err != nil {
		return err
	}
	defer logger.Sync()

	region := *regionFlag
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	descs, err := schema.LoadFile(*schemasFlag)
	if err != nil {
		return err
	}

	registry := tablestore.NewRegistry()
	for _, d := range descs {
		if err := registry.Register(d); err != nil {
			return err
		}
	}

	ctx := context.Background()
	client, err := ddb.NewClient(ctx, ddb.Config{
		Region:    region,
		Endpoint:  *endpointFlag,
		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
		SecretKey: os.Getenv("AWS_SECRET_KEY"),
	})
	if err != nil {
		return err
	}

	store := ddb.New(client, registry, ddb.WithLogger(logger))
	for _, d := range descs {
		logger.Info("ensuring table", zap.String("table", d.TableName))
		if err := store.EnsureTable(ctx, d); err != nil {
			return err
		}
	}

	logger.Info("all tables ready", zap.Int("count", len(descs)))
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
