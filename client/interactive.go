package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// RunInteractive reads commands from in and executes them against the
// cluster until EOF or "quit". Commands:
//
//	read           print the current register value
//	write <json>   set the register to the given JSON document
func (c *Client) RunInteractive(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "commands: read | write <json> | quit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		cmd, rest, _ := strings.Cut(line, " ")

		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "read":
			value, err := c.Get(ctx)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s\n", value)
		case "write":
			value := json.RawMessage(strings.TrimSpace(rest))
			if !json.Valid(value) {
				fmt.Fprintln(out, "error: value is not valid JSON")
				continue
			}
			if err := c.Put(ctx, value); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "ok")
		default:
			fmt.Fprintf(out, "unknown command %q\n", cmd)
		}
	}
}
