// annalist - grand strategy save file inspector
//
// Usage:
//
//	annalist sections [flags] <save>   List the save's top-level sections
//	annalist dump [flags] <save>       Ingest the save and print a JSON digest
//	annalist version                   Print version info
//
// Flags:
//
//	--config <path>   YAML config file
//	--tokens <path>   token listing for binary saves
//	--skip <a,b,c>    sections to skip during ingestion
//	--ids             serialize entity handles as bare ids
//
// Compressed (ironman) saves are unwrapped transparently. Without a token
// listing, binary field names surface as hex placeholders.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hearthwood/annalist/config"
	"github.com/hearthwood/annalist/save"
	"github.com/hearthwood/annalist/state"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "version" {
		fmt.Printf("annalist %s\n", version)
		return
	}

	var (
		configPath string
		tokensPath string
		skipArg    string
		plainIDs   bool
		fileArg    string
	)
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--ids":
			plainIDs = true
		case strings.HasPrefix(args[i], "--config="):
			configPath = strings.TrimPrefix(args[i], "--config=")
		case args[i] == "--config" && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(args[i], "--tokens="):
			tokensPath = strings.TrimPrefix(args[i], "--tokens=")
		case args[i] == "--tokens" && i+1 < len(args):
			i++
			tokensPath = args[i]
		case strings.HasPrefix(args[i], "--skip="):
			skipArg = strings.TrimPrefix(args[i], "--skip=")
		case args[i] == "--skip" && i+1 < len(args):
			i++
			skipArg = args[i]
		case strings.HasPrefix(args[i], "--"):
			fatal("unknown flag: %s", args[i])
		default:
			fileArg = args[i]
		}
	}
	if fileArg == "" {
		fatal("%s: missing save file argument", cmd)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}
	if tokensPath != "" {
		cfg.TokensPath = tokensPath
	}
	if skipArg != "" {
		cfg.SkipSections = strings.Split(skipArg, ",")
	}
	if plainIDs {
		cfg.RefEncoding = "id"
	}

	log := newLogger(cfg.LogLevel)
	if cfg.RefEncoding == "id" {
		state.SetRefEncoding(state.RefPlainID)
	}
	if cfg.TokensPath != "" {
		f, err := os.Open(cfg.TokensPath)
		if err != nil {
			fatal("open tokens: %v", err)
		}
		res, err := save.LoadTokens(f)
		f.Close()
		if err != nil {
			fatal("%v", err)
		}
		save.SetDefault(res)
		log.Debug("token table loaded", "tokens", res.Len())
	}

	file, err := save.Open(fileArg)
	if err != nil {
		fatal("%v", err)
	}
	log.Debug("save loaded", "encoding", file.Encoding().String(), "bytes", len(file.Data()))

	switch cmd {
	case "sections":
		cmdSections(file)
	case "dump":
		cmdDump(file, cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "annalist: unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func cmdSections(file *save.File) {
	r := file.Sections(nil)
	for {
		sec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s\t%s\n", sec.Name(), sec.Encoding())
		sec.Skip()
	}
}

// digest is the JSON shape dump prints.
type digest struct {
	CurrentDate state.Date         `json:"current_date,omitzero"`
	RealDate    state.Date         `json:"real_date,omitzero"`
	Counts      map[state.Kind]int `json:"counts"`
	Players     []*state.Player    `json:"players,omitempty"`
}

func cmdDump(file *save.File, cfg *config.Config, log *slog.Logger) {
	st := state.New(log)
	r := file.Sections(nil)
	for {
		sec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fatal("%v", err)
		}
		if cfg.ShouldSkip(sec.Name()) {
			log.Debug("section skipped by config", "name", sec.Name())
			sec.Skip()
			continue
		}
		if err := st.IngestSection(sec); err != nil {
			fatal("%v", err)
		}
	}

	out, err := json.MarshalIndent(digest{
		CurrentDate: st.CurrentDate(),
		RealDate:    st.RealDate(),
		Counts:      st.Counts(),
		Players:     st.Players(),
	}, "", "  ")
	if err != nil {
		fatal("encode digest: %v", err)
	}
	fmt.Println(string(out))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `annalist - grand strategy save file inspector

Usage:
  annalist sections [flags] <save>   List the save's top-level sections
  annalist dump [flags] <save>       Ingest the save and print a JSON digest
  annalist version                   Print version info

Flags:
  --config <path>   YAML config file
  --tokens <path>   token listing for binary saves
  --skip <a,b,c>    sections to skip during ingestion
  --ids             serialize entity handles as bare ids`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "annalist: "+format+"\n", args...)
	os.Exit(1)
}
