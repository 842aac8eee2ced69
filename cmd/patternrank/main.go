package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"PatternRank/internal/config"
	"PatternRank/internal/logger"
)

const usage = `Usage: patternrank <command> [flags]

Commands:
  rank      rank every candlestick pattern by backtest performance
  compare   compare rankings with and without the news filter
  signals   list the signal bars of one pattern or all patterns
  patterns  list available patterns
  serve     run the scheduled ranking bot

Run "patternrank <command> -h" for command flags.
`

func main() {
	logger.Init("patternrank", os.Getenv("LOG_LEVEL"))

	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init("patternrank", cfg.Log.Level)

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "rank":
		err = runRank(cfg, args)
	case "compare":
		err = runCompare(cfg, args)
	case "signals":
		err = runSignals(cfg, args)
	case "patterns":
		err = runPatterns(args)
	case "serve":
		err = runServe(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}
