// SPDX-License-Identifier: Apache-2.0
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"sable/grammar"
	"sable/internal/compile"
	"sable/internal/errors"
	"sable/internal/ir"
	"sable/internal/lower"
	"sable/internal/semantic"
)

func main() {
	watch := flag.Bool("watch", false, "recompile when the source file changes")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sable [--watch] <file.sb>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	if *watch {
		watchLoop(path)
		return
	}
	if !run(path) {
		os.Exit(1)
	}
}

func run(path string) bool {
	startTime := time.Now()

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return false
	}

	file, parseErr := grammar.ParseSource(path, string(source))
	if parseErr != nil {
		grammar.ReportParseError(string(source), parseErr)
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		return false
	}

	moduleName := filepath.Base(path)
	module, semErrs, err := compile.Module(file, moduleName, lower.NopDebug{})
	if err != nil {
		reporter := errors.NewErrorReporter(path, string(source))
		for _, se := range semErrs {
			fmt.Print(reporter.FormatError(toCompilerError(se)))
		}
		var stmtErr *lower.StatementError
		if stderrors.As(err, &stmtErr) {
			fmt.Print(reporter.FormatError(errors.UnsupportedStatement(stmtErr.Msg, stmtErr.Stmt)))
		} else if len(semErrs) == 0 {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		return false
	}

	fmt.Println(ir.Print(module))
	color.Green("Successfully processed %s in %s", path, formatDuration(time.Since(startTime)))
	return true
}

func watchLoop(path string) {
	run(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create watcher: %v\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	// watch the directory: editors often replace the file on save
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to watch %s: %v\n", path, err)
		os.Exit(1)
	}

	color.Cyan("Watching %s for changes...", path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				fmt.Println()
				run(path)
				color.Cyan("Watching %s for changes...", path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func toCompilerError(se semantic.Error) errors.CompilerError {
	return errors.CompilerError{
		Level:    errors.Error,
		Code:     se.Code,
		Message:  se.Message,
		Position: se.Position,
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fus", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
