// Package main is the detect command: it searches one image for objects of a
// given class with a pretrained MobileNet-SSD network.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args, os.Stdout, os.Stderr, defaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, d deps) int {
	fmt.Fprintln(stdout, "WELCOME TO Object DETECTION")

	err := newApp(stdout, stderr, d).RunContext(ctx, hoistFlags(args))
	if err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
	}
	return exitCode(err)
}
