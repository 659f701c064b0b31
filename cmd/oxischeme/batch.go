package main

import (
	"fmt"
	"os"

	"github.com/oxischeme/oxischeme/internal/cli"
	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/oxischeme/oxischeme/internal/printer"
)

// runBatch evaluates each file's top-level forms in order against one
// shared interpreter, printing the value of the last form in each file.
// The first error aborts the whole run.
func runBatch(logger *cli.Logger, files []string) error {
	in := NewInterpreter()

	for _, path := range files {
		logger.Debug("loading %s", path)

		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		v, err := in.EvalSource(path, string(source))
		if err != nil {
			return fmt.Errorf("%s", errors.Message(err))
		}

		fmt.Println(printer.Print(v))
	}

	return nil
}

// runEval evaluates a single expression passed via --eval and prints
// its result.
func runEval(logger *cli.Logger, expr string) error {
	in := NewInterpreter()

	v, err := in.EvalSource("<eval>", expr)
	if err != nil {
		return fmt.Errorf("%s", errors.Message(err))
	}

	fmt.Println(printer.Print(v))

	return nil
}
