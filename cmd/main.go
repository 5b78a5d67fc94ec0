package main

import (
	"fmt"
	"os"

	"github.com/masterfoodbrokers/crm-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	a.Start()

	a.Log.Info("server listening", "port", a.Cfg.Port)
	if err := a.Run(); err != nil {
		a.Log.Error("server stopped", "error", err)
	}
}
