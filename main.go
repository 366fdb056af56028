// Package main is the entry point for the college portal API server.
package main

import (
	"context"
	"fmt"
	"os"

	"collegeportal/cmd"
	"collegeportal/routes"
)

func main() {
	if err := cmd.NewRootCmd(routes.Set{}).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
