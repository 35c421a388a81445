package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.sr.ht/~sircmpwn/getopt"
	"go.uber.org/zap"
	"golang.org/x/term"

	"wasp/wipe/internal/config"
	"wasp/wipe/internal/console"
	"wasp/wipe/internal/eeprom"
	"wasp/wipe/internal/wasp"
	"wasp/wipe/internal/wipe"
)

const usage = "usage: wipe [-c config] [-e image] [-t transport] [-d] [-h] [program]\n" +
	"\n" +
	"options:\n" +
	"  -c FILE       read configuration from FILE\n" +
	"  -e FILE       keep the EEPROM image in FILE\n" +
	"  -t TRANSPORT  send packets via log, serial, http or none\n" +
	"  -d            dump each statement before it executes\n" +
	"  -h            print this message\n"

type flags struct {
	config    string
	image     string
	transport string
	trace     bool
	program   string
}

func readFlags(args []string) (flags, error) {

	var f flags

	opts, optind, err := getopt.Getopts(args, "c:e:t:dh")
	if err != nil {
		return f, err
	}

	for _, optV := range opts {
		switch optV.Option {
		case 'c':
			f.config = optV.Value
		case 'e':
			f.image = optV.Value
		case 't':
			f.transport = optV.Value
		case 'd':
			f.trace = true
		default: // case 'h':
			fmt.Print(usage)
			os.Exit(0)
		}
	}

	switch rest := args[optind:]; len(rest) {
	case 0:
	case 1:
		f.program = rest[0]
	default:
		return f, fmt.Errorf("too many arguments")
	}

	return f, nil
}

func main() {

	os.Exit(run())
}

func run() int {

	f, err := readFlags(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wipe: %v\n%s", err, usage)
		return 2
	}

	cfg := config.Default()

	if f.config != "" {
		if cfg, err = config.Load(f.config); err != nil {
			fmt.Fprintf(os.Stderr, "wipe: %v\n", err)
			return 1
		}
	}

	//
	// Flags override the file
	//

	if f.image != "" {
		cfg.Storage.Image = f.image
	}

	if f.transport != "" {
		cfg.Network.Transport = f.transport
	}

	cfg.Interpreter.TraceDump = cfg.Interpreter.TraceDump || f.trace

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "wipe: %v\n", err)
		return 1
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wipe: %v\n", err)
		return 1
	}
	defer log.Sync()

	transport, closeTransport, err := openTransport(cfg, log)
	if err != nil {
		log.Error("cannot open transport", zap.Error(err))
		return 1
	}
	defer closeTransport()

	var store eeprom.Store = eeprom.NewMemory(cfg.Storage.EEPROMBytes)

	if cfg.Storage.Image != "" {
		fs, err := eeprom.OpenFile(cfg.Storage.Image, cfg.Storage.EEPROMBytes, log.Named("eeprom"))
		if err != nil {
			log.Error("cannot open eeprom image", zap.Error(err))
			return 1
		}

		defer func() {
			if err := fs.Flush(); err != nil {
				log.Error("cannot write eeprom image", zap.Error(err))
			}
		}()

		store = fs
	}

	src := openSource(cfg)
	defer src.Close()

	go sigHdlr(src)

	sink := wasp.NewPacketSink(transport, log.Named("wasp"))

	s, err := wipe.New(wipe.Options{
		ProgramBytes: cfg.Interpreter.ProgramBytes,
		MaxSymbols:   cfg.Interpreter.MaxSymbols,
		MaxLine:      cfg.Interpreter.MaxLine,
		Store:        store,
		Sink:         sink,
		Source:       src,
		Out:          os.Stdout,
		Log:          log,
		TraceDump:    cfg.Interpreter.TraceDump,
	})
	if err != nil {
		log.Error("cannot start interpreter", zap.Error(err))
		return 1
	}

	s.Greeting()

	if f.program != "" {
		s.Interpret("start " + f.program)
	}

	if !s.Exiting() {
		if err := s.Loop(); err != nil {
			log.Error("console failed", zap.Error(err))
			return 1
		}
	}

	sent, failed := sink.Stats()
	log.Info("exiting", zap.Int("packets", sent), zap.Int("failed", failed))

	return 0
}

type source interface {
	wipe.LineSource
	Interrupt()
	Close() error
}

// Line editing only makes sense when both ends are a terminal
func openSource(cfg config.Config) source {

	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return console.NewTerminal()
	}

	return console.NewScript(os.Stdin, cfg.Interpreter.CancelChar, nil)
}

func openTransport(cfg config.Config, log *zap.Logger) (wasp.Transport, func(), error) {

	nothing := func() {}

	switch cfg.Network.Transport {
	case "serial":
		dev, err := os.OpenFile(cfg.Network.Device, os.O_WRONLY, 0)
		if err != nil {
			return nil, nothing, fmt.Errorf("open %s: %w", cfg.Network.Device, err)
		}

		return wasp.NewWriterTransport(dev), func() { dev.Close() }, nil

	case "http":
		timeout, err := cfg.Timeout()
		if err != nil {
			return nil, nothing, err
		}

		return wasp.NewHTTPTransport(cfg.Network.GatewayURL, timeout), nothing, nil

	case "none":
		return wasp.DiscardTransport{}, nothing, nil

	default:
		return wasp.NewLogTransport(log.Named("packet")), nothing, nil
	}
}

//
// ^C posts a cancel to the running program.  At the prompt liner
// sees it first and abandons the line
//

func sigHdlr(src source) {

	ch := make(chan os.Signal, 1)

	signal.Ignore(syscall.SIGTSTP)

	signal.Notify(ch, syscall.SIGINT)

	for range ch {
		src.Interrupt()
	}
}
