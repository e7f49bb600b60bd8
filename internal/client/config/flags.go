package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   backend project URL
//	-k string   public API key
//	-l string   startup language
//	-d string   local database file
//	-i int      session refresh check interval (in seconds)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-k", "-l", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ProjectURL, "u", cfg.ProjectURL, "backend project URL")
	fs.StringVar(&cfg.AnonKey, "k", cfg.AnonKey, "public API key")
	fs.StringVar(&cfg.DefaultLang, "l", cfg.DefaultLang, "startup language")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	refreshInterval := fs.Int("i", int(cfg.RefreshCheckInterval.Seconds()), "session refresh check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RefreshCheckInterval = time.Duration(*refreshInterval) * time.Second
}
