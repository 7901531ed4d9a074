// Command pdftranslate extracts, translates and rebuilds PDF documents.
//
// Usage:
//
//	pdftranslate extract <in.pdf> [-o text.txt] [-images dir]
//	pdftranslate translate <in.pdf> -o out.pdf [-translator gemini|none] [-lang English]
//	pdftranslate serve [-addr :8080]
//
// Settings not given as flags come from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

var errUsage = errors.New("usage")

const usage = `Usage:
  pdftranslate extract <in.pdf> [-o text.txt] [-images dir]
  pdftranslate translate <in.pdf> -o out.pdf [-translator gemini|none] [-lang language]
  pdftranslate serve [-addr host:port]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		log.Fatal().Err(err).Msg("pdftranslate failed")
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "extract":
		return runExtract(ctx, args[1:], stdout, stderr)
	case "translate":
		return runTranslate(ctx, args[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// parseArgs parses flags that may appear before or after positional
// arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}
