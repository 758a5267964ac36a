package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

const VERSION = "0.3.0"

func main() {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "./modgraph.toml", "Path to config file")
	flag.StringVar(&opts.entry, "entry", "", "Entry file (overrides project.entry)")
	flag.StringVar(&opts.dot, "dot", "", "Write the module graph as DOT to this path")
	flag.StringVar(&opts.markdown, "markdown", "", "Write a markdown report to this path")
	flag.StringVar(&opts.sarif, "sarif", "", "Write findings as SARIF to this path")
	flag.StringVar(&opts.summary, "summary", "", "Write a YAML run summary to this path")
	flag.BoolVar(&opts.trace, "trace", false, "Trace shortest import chain between two modules")
	flag.StringVar(&opts.impact, "impact", "", "Analyze change impact for a module path")
	flag.IntVar(&opts.top, "top", 10, "Number of hotspot modules to report (0 for all)")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("modgraph v%s\n", VERSION)
		os.Exit(0)
	}
	opts.args = flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, opts, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
