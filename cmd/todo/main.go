package main

import (
	"context"

	"github.com/jpc2301-netizen/todo-app/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
