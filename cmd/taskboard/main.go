package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("taskboard: ")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
