// Command latex-clean expands the macros defined in a LaTeX preamble into
// the document body and collects the result, the cited bibliography
// entries and the referenced graphics into a submission directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"latex-cleaner/internal/cleaner"
	"latex-cleaner/internal/config"
	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/presets"
	"latex-cleaner/internal/types"
)

func main() {
	input := flag.String("i", "", "Input LaTeX file")
	output := flag.String("o", "", "Output file name, written into the output directory")
	outDir := flag.String("d", "", "Output directory")
	defines := flag.String("defines", "", "Comma-separated \\ifdefined flags that evaluate to true, e.g. \\agudraft")
	configPath := flag.String("config", "", "Config file (JSON, or YAML with a .yaml/.yml extension)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	lenient := flag.Bool("lenient", false, "Treat braces left open at the end of input as closed")
	flag.Parse()

	cm, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cm.InitLogger(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	cfg := cm.GetConfig()

	opts := cleaner.Options{
		Input:           *input,
		Output:          *output,
		OutDir:          *outDir,
		Defines:         cm.GetDefines(),
		Policy:          macro.Strict,
		Extra:           presets.FromSpecs(cfg.ExtraMacros),
		ImageExtensions: cm.GetImageExtensions(),
	}
	if *defines != "" {
		opts.Defines = strings.Split(*defines, ",")
	}
	if *lenient || !cfg.IsStrict() {
		opts.Policy = macro.Lenient
	}

	report, err := cleaner.Run(opts)
	if err != nil {
		logger.Error("cleaning failed", err, logger.String("code", string(types.CodeOf(err))))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
	fmt.Print(report)
}
