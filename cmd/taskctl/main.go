package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"task-service/internal/cli"
	"task-service/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fatal("load .env: %v", err)
	}
	if err := cli.NewRootCommand(db.Open).Execute(); err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "taskctl: "+format+"\n", args...)
	os.Exit(1)
}
