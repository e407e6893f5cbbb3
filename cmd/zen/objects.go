package main

import (
	"fmt"
	"io"

	"github.com/dudk/zen/objects"
)

type objectsCommand struct{}

func (*objectsCommand) Name() string {
	return "objects"
}

func (*objectsCommand) Help() string {
	return "List the available objects"
}

func (*objectsCommand) Run(_ Config, stdout io.Writer) error {
	for _, label := range objects.NewRegistry().Labels() {
		if _, err := fmt.Fprintln(stdout, label); err != nil {
			return err
		}
	}
	return nil
}
