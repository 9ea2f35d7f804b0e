package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// router is the minimal surface the REPL needs: open a view by name.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type router interface {
	Open(ctx context.Context, name string, args []string) bool
}

// runREPL starts a simple read–eval–print loop for the gallerist CLI.
//
// It reads a line from reader, parses the first token as the view name and
// the rest as its arguments, and hands them to r. Unknown names are reported
// back to the user. The loop exits on EOF, when ctx is done, or when the user
// types "exit" or "quit".
//
// Views print their own errors; the loop only deals with I/O.
func runREPL(ctx context.Context, r router, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("gallerist %s> ", statusFn()))
		line, err := reader.ReadString('\n')

		parts := strings.Fields(line)
		if len(parts) > 0 {
			switch cmd := parts[0]; cmd {
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				if !r.Open(ctx, cmd, parts[1:]) {
					printlnFn("Unknown command:", cmd, "(type 'help' for commands)")
				}
			}
		}

		if err != nil {
			return
		}
	}
}
