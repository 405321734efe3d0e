/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tieubaoca/pdfqa-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}
}
