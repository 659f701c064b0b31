package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/oxischeme/oxischeme/internal/cli"
	"github.com/oxischeme/oxischeme/internal/errors"
	"github.com/oxischeme/oxischeme/internal/printer"
	"github.com/oxischeme/oxischeme/internal/watch"
)

// REPL is the interactive read-eval-print loop: one Interpreter plus
// the readline instance, history bookkeeping, and optional file
// watcher that sit around it.
type REPL struct {
	interp      *Interpreter
	logger      *cli.Logger
	rl          *readline.Instance
	historyFile string
	maxHistory  int
	noPrompt    bool
	watcher     *watch.ReloadWatcher
}

func runREPL(logger *cli.Logger, historyFile string, maxHistory int, noPrompt, enableWatch bool) error {
	prompt := "oxischeme> "
	if noPrompt {
		prompt = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		HistoryLimit:    maxHistory,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	r := &REPL{
		interp:      NewInterpreter(),
		logger:      logger,
		rl:          rl,
		historyFile: historyFile,
		maxHistory:  maxHistory,
		noPrompt:    noPrompt,
	}

	if enableWatch {
		w, err := watch.NewReloadWatcher()
		if err != nil {
			logger.Error("watch disabled: %v", err)
		} else {
			r.watcher = w
			go r.watchLoop()
		}
	}

	r.installSignalHandler()

	return r.Run()
}

func (r *REPL) installSignalHandler() {
	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigC
		r.rl.Close()
		os.Exit(0)
	}()
}

func (r *REPL) watchLoop() {
	for {
		select {
		case path, ok := <-r.watcher.Reloads():
			if !ok {
				return
			}

			r.logger.Info("reloading %s", path)
			r.loadFile(path)

		case err, ok := <-r.watcher.Errors():
			if !ok {
				return
			}

			r.logger.Error("watch: %v", err)
		}
	}
}

// Run drives the read-eval-print loop until EOF or an unrecoverable
// readline error.
func (r *REPL) Run() error {
	r.printBanner()

	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}

		if err != nil {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if r.handleCommand(line) {
				return nil
			}

			continue
		}

		r.evalAndPrint("<repl>", line)
	}
}

func (r *REPL) printBanner() {
	if r.noPrompt {
		return
	}

	fmt.Println("oxischeme — type :help for REPL commands, :quit to exit")
}

func (r *REPL) evalAndPrint(source, text string) {
	v, err := r.interp.EvalSource(source, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.Message(err))
		return
	}

	fmt.Println(printer.Print(v))
}

// handleCommand processes a leading-colon REPL command, returning true
// if the REPL should exit.
func (r *REPL) handleCommand(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case ":help":
		r.printHelp()

	case ":quit", ":exit":
		return true

	case ":clear":
		fmt.Print("\033[H\033[2J")

	case ":reset":
		r.interp = NewInterpreter()
		if r.watcher != nil {
			r.watcher.ClearTracked()
		}
		fmt.Println("environment reset")

	case ":load":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: :load <path>")
			return false
		}

		r.loadFile(args[0])

	case ":history":
		r.showHistory()

	case ":vars":
		fmt.Printf("global slots defined: %d\n", r.interp.Env.GlobalSlotCount())

	case ":debug":
		r.logger.DebugMode = !r.logger.DebugMode
		fmt.Printf("debug mode: %v\n", r.logger.DebugMode)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %s (try :help)\n", cmd)
	}

	return false
}

func (r *REPL) loadFile(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot load %s: %v\n", path, err)
		return
	}

	v, err := r.interp.EvalSource(path, string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errors.Message(err))
		return
	}

	fmt.Println(printer.Print(v))

	if r.watcher != nil {
		if err := r.watcher.Track(path); err != nil {
			r.logger.Error("watch %s: %v", path, err)
		}
	}
}

func (r *REPL) showHistory() {
	cfg := r.rl.Config
	data, err := os.ReadFile(cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no history: %v\n", err)
		return
	}

	fmt.Print(string(data))
}

func (r *REPL) printHelp() {
	fmt.Println(`REPL commands:
  :help            show this message
  :quit, :exit     leave the REPL
  :clear           clear the screen
  :reset           discard all bindings and start fresh
  :load <path>     evaluate a file's forms in the current environment
  :history         show input history
  :vars            show how many global slots are reserved
  :debug           toggle debug logging`)
}
