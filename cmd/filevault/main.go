package main

import (
	"context"
	"log"
	"os"

	"filevault-api/internal"
)

func main() {
	ctx := context.Background()

	app, err := internal.NewApp(ctx)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer app.Close()

	app.InitControllers()

	if err = app.Reconcile(ctx); err != nil {
		app.Logger().Sugar().Errorf("startup reconciliation failed: %v", err)
		os.Exit(1)
	}

	if err = app.Run(ctx); err != nil {
		app.Logger().Sugar().Errorf("filevault stopped with error: %v", err)
		os.Exit(1)
	}
}
