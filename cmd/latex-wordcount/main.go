// Command latex-wordcount reports the number of words, figures and tables
// of a LaTeX document, as required by journals with length limits.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"latex-cleaner/internal/config"
	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/macro"
	"latex-cleaner/internal/presets"
	"latex-cleaner/internal/types"
	"latex-cleaner/internal/wordcount"
)

func main() {
	input := flag.String("i", "", "Input LaTeX file")
	defines := flag.String("defines", "", "Comma-separated \\ifdefined flags that evaluate to true, without backslash")
	countSections := flag.Bool("count-section-headings", false, "Count words in section headings")
	countAppendix := flag.Bool("count-appendix", false, "Count words in the appendix")
	countFigures := flag.Bool("count-figure-captions", false, "Count words in figure environments")
	countTables := flag.Bool("count-table-captions", false, "Count words in table environments")
	configPath := flag.String("config", "", "Config file (JSON, or YAML with a .yaml/.yml extension)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: no input file given (-i)")
		os.Exit(1)
	}

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

	opts := wordcount.DefaultOptions()
	opts.ApplyConfig(cfg.WordCount)
	opts.Defines = cm.GetDefines()
	if *defines != "" {
		opts.Defines = strings.Split(*defines, ",")
	}
	opts.CountSectionHeadings = opts.CountSectionHeadings || *countSections
	opts.CountAppendix = opts.CountAppendix || *countAppendix
	opts.CountFigureCaptions = *countFigures
	opts.CountTableCaptions = *countTables
	opts.Extra = presets.FromSpecs(cfg.ExtraMacros)
	if !cfg.IsStrict() {
		opts.Policy = macro.Lenient
	}

	res, err := wordcount.CountFile(*input, opts)
	if err != nil {
		logger.Error("word count failed", err, logger.String("code", string(types.CodeOf(err))))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
	fmt.Print(res)
}
