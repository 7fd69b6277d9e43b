// Command plagiat checks a text or document against the analysis service
// from the terminal and optionally requests a reformulation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
)

type options struct {
	text        string
	file        string
	reformulate string
	adopt       bool
	ping        bool
	noColor     bool
}

func (o *options) validate() error {
	if o.ping {
		return nil
	}
	if (o.text == "") == (o.file == "") {
		return errors.New("exactly one of -text or -file is required")
	}
	switch o.reformulate {
	case "", "ai", "basic":
	default:
		return fmt.Errorf("-reformulate must be ai or basic, got %q", o.reformulate)
	}
	if o.adopt && o.reformulate == "" {
		return errors.New("-adopt requires -reformulate")
	}
	if o.reformulate != "" && o.file != "" {
		return errors.New("-reformulate applies to -text only")
	}
	return nil
}

func main() {
	var opts options
	configPath := flag.String("config", config.BaseConfigFile, "path to the base TOML config file")
	flag.StringVar(&opts.text, "text", "", "text to check")
	flag.StringVar(&opts.file, "file", "", "document to check (.pdf or .docx)")
	flag.StringVar(&opts.reformulate, "reformulate", "", "request a reformulation: ai or basic")
	flag.BoolVar(&opts.adopt, "adopt", false, "adopt the reformulation and check it again")
	flag.BoolVar(&opts.ping, "ping", false, "report whether the analysis service is reachable and exit")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")
	flag.Parse()

	if err := opts.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init failed:", err)
		os.Exit(1)
	}
	defer infra.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(cfg, infra, newRenderer(os.Stdout, opts.noColor))
	if err := app.run(ctx, opts); err != nil {
		infra.Close()
		os.Exit(1)
	}
}
