package main

import "github.com/mvp-joe/contexto/internal/cli"

func main() {
	cli.Execute()
}
