// Command inspect dumps the boards, tasks and chat messages of a stopped server's
// badger directory as tables, and issues development tokens.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"teamspace/auth"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BadgerFilepath string        `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	JWTSecret      string        `envconfig:"JWT_SECRET"`
	TokenDuration  time.Duration `envconfig:"AUTH_TOKEN_DURATION" default:"24h"`
	// INSPECT_COLOURS enables colorized table headers
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(2)
	}

	kind := flag.String("kind", "all", "What to dump: boards, tasks, messages or all")
	dbPath := flag.String("db", cfg.BadgerFilepath, "Path to badger DB")
	token := flag.String("token", "", "Issue a token for this user id instead of dumping")
	name := flag.String("name", "", "Display name carried by the issued token")
	flag.Parse()

	if *token != "" {
		if err := issue(cfg, *token, *name); err != nil {
			fmt.Fprintf(os.Stderr, "token error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while opening badger: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	kinds := []string{*kind}
	if *kind == "all" {
		kinds = []string{kindBoards, kindTasks, kindMessages}
	}
	for _, k := range kinds {
		if err := dump(db, k, os.Stdout, cfg.Colours); err != nil {
			fmt.Fprintf(os.Stderr, "dump %s: %v\n", k, err)
			os.Exit(1)
		}
	}
}

func issue(cfg Config, userID, name string) error {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required to issue a token")
	}
	if name == "" {
		name = userID
	}
	signed, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration).Generate(userID, name)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}
