// cmd/schemacheck validates a CUE schema directory and prints the
// resources it declares. Run it before deploying a schema change to
// catch unsupported field kinds, duplicate fields, and empty packages.
//
//	schemacheck [-dir schemas]
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/matthewbaird/cruder/internal/schema"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("schemacheck: ")

	dir := flag.String("dir", "schemas", "directory containing the CUE schema package")
	flag.Parse()

	resources, err := schema.LoadDir(*dir)
	if err != nil {
		log.Fatalf("%v", err)
	}

	for _, res := range resources {
		fmt.Printf("%s (%s)\n", res.Name, res.DisplayNamePlural)
		for _, fd := range res.Fields() {
			flags := ""
			if fd.Required {
				flags += " required"
			}
			if fd.Unique {
				flags += " unique"
			}
			if fd.ReadOnly {
				flags += " readonly"
			}
			if fd.Default != "" {
				flags += fmt.Sprintf(" default=%s", fd.Default)
			}
			if fd.Type == schema.TypeChoice {
				flags += fmt.Sprintf(" choices=%d", len(fd.Choices))
			}
			if fd.Type == schema.TypeRelation {
				flags += " -> " + fd.Relation
			}
			fmt.Printf("  %-20s %s%s\n", fd.Name, fd.Type, flags)
		}
	}
	fmt.Printf("%d resources OK\n", len(resources))
}
