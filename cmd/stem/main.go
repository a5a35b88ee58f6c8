package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/oarkflow/porter/binding"
	"github.com/oarkflow/porter/config"
	"github.com/oarkflow/porter/logging"
	"github.com/oarkflow/porter/stemmer"
	"github.com/oarkflow/porter/streaming"
)

type options struct {
	cfgPath string
	noFold  bool
	asJSON  bool
	trace   bool
}

type result struct {
	Word  string                `json:"word"`
	Stem  string                `json:"stem"`
	Steps []stemmer.TraceEntry `json:"steps,omitempty"`
}

func main() {
	var o options
	flag.StringVar(&o.cfgPath, "config", "", "YAML config file (only the stemmer section is used)")
	flag.BoolVar(&o.noFold, "no-fold", false, "do not lower-case input")
	flag.BoolVar(&o.asJSON, "json", false, "print one JSON object per word")
	flag.BoolVar(&o.trace, "trace", false, "include the form after every step (implies -json)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: stem [flags] [word ...]\n\nWith no words, reads one word per line from stdin.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(o, flag.Args(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "stem: %v\n", err)
		os.Exit(1)
	}
}

func run(o options, args []string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return err
	}
	if o.noFold {
		cfg.Stemmer.LowercaseFold = false
	}
	s, err := stemmer.New(cfg.Stemmer)
	if err != nil {
		return err
	}
	b := binding.New(cfg.Stemmer, binding.WithLogger(logging.Discard()))

	if !o.asJSON && !o.trace {
		if len(args) == 0 {
			return streaming.StemLines(in, out, b.Stem)
		}
		w := bufio.NewWriter(out)
		for _, a := range args {
			fmt.Fprintln(w, b.Stem(a))
		}
		return w.Flush()
	}

	enc := json.NewEncoder(out)
	emit := func(word string) error {
		r := result{Word: word}
		if o.trace {
			r.Stem, r.Steps = s.Trace(word)
		} else {
			r.Stem = b.Stem(word)
		}
		return enc.Encode(r)
	}
	if len(args) == 0 {
		return streaming.ProcessWords(in, emit)
	}
	for _, a := range args {
		if err := emit(a); err != nil {
			return err
		}
	}
	return nil
}
