// Command contexto-parse prints the entities extracted from one source file.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mvp-joe/contexto/internal/indexer/parsers"
)

func main() {
	path := "testdata/code/go/simple.go"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	source, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}

	registry := parsers.NewDefaultRegistry()
	entities, err := registry.Parse(path, source)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("=== %s (%s) ===\n", path, registry.Language(path))
	printEntities(entities, 0)
}

func printEntities(entities []parsers.Entity, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entities {
		fmt.Printf("%s%s %s at lines %d-%d\n", indent, e.Kind, e.Name, e.StartLine, e.EndLine)
		if e.Signature != "" {
			fmt.Printf("%s  signature: %s\n", indent, e.Signature)
		}
		if e.Docstring != "" {
			fmt.Printf("%s  docstring: %s\n", indent, strings.SplitN(e.Docstring, "\n", 2)[0])
		}
		if len(e.Calls) > 0 {
			fmt.Printf("%s  calls: %s\n", indent, strings.Join(e.Calls, ", "))
		}
		printEntities(e.Children, depth+1)
	}
}
