// Command arckeystore manages named secrets in PostgreSQL. Values are
// encrypted with the arc4 cipher before they reach the database; the
// sealing key never leaves this process.
//
//	arckeystore -key deadbeef put  -name prod_dsn -value 'postgres://...'
//	arckeystore -key deadbeef get  -name prod_dsn
//	arckeystore              delete -name prod_dsn
//	arckeystore              list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/udisondev/arcrypt/internal/config"
	"github.com/udisondev/arcrypt/internal/encoding"
	"github.com/udisondev/arcrypt/internal/keystore"
)

const ConfigPath = "config/arcrypt.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	keyText := flag.String("key", "", "secret key (required for put/get)")
	keyEnc := flag.String("key-encoding", "hex", "key encoding: hex, base64, base91, raw")
	flag.Parse()

	if flag.NArg() == 0 {
		return fmt.Errorf("usage: arckeystore [flags] put|get|delete|list [subcommand flags]")
	}
	sub := flag.Arg(0)

	cfgPath := ConfigPath
	if p := os.Getenv("ARCRYPT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadTool(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))

	store, err := keystore.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to keystore: %w", err)
	}
	defer store.Close()

	if err := keystore.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	sealKey := func() ([]byte, error) {
		key, err := encoding.DecodeKey(*keyText, *keyEnc)
		if err != nil {
			return nil, fmt.Errorf("parsing key: %w", err)
		}
		if len(key) == 0 {
			return nil, fmt.Errorf("-key is required for this subcommand")
		}
		return key, nil
	}

	args := flag.Args()[1:]
	switch sub {
	case "put":
		return runPut(ctx, store, sealKey, args)
	case "get":
		return runGet(ctx, store, sealKey, args)
	case "delete":
		return runDelete(ctx, store, args)
	case "list":
		return runList(ctx, store)
	default:
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

func runPut(ctx context.Context, store *keystore.Store, sealKey func() ([]byte, error), args []string) error {
	fs := flag.NewFlagSet("put", flag.ContinueOnError)
	name := fs.String("name", "", "secret name")
	value := fs.String("value", "", "secret value (reads stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := sealKey()
	if err != nil {
		return err
	}

	data := []byte(*value)
	if *value == "" {
		data, err = readStdin()
		if err != nil {
			return err
		}
	}

	entry, err := keystore.Seal(*name, data, key)
	if err != nil {
		return fmt.Errorf("sealing %q: %w", *name, err)
	}
	if err := store.Put(ctx, entry); err != nil {
		return err
	}
	slog.Info("secret stored", "name", *name, "fingerprint", entry.KeyFingerprint)
	return nil
}

func runGet(ctx context.Context, store *keystore.Store, sealKey func() ([]byte, error), args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	name := fs.String("name", "", "secret name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, err := sealKey()
	if err != nil {
		return err
	}

	entry, err := store.Get(ctx, *name)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("secret %q not found", *name)
	}

	value, err := keystore.Open(*entry, key)
	if err != nil {
		return fmt.Errorf("opening %q: %w", *name, err)
	}
	_, err = os.Stdout.Write(value)
	return err
}

func runDelete(ctx context.Context, store *keystore.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	name := fs.String("name", "", "secret name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deleted, err := store.Delete(ctx, *name)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("secret %q not found", *name)
	}
	slog.Info("secret deleted", "name", *name)
	return nil
}

func runList(ctx context.Context, store *keystore.Store) error {
	entries, err := store.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKEY\tUPDATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.KeyFingerprint, e.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func readStdin() ([]byte, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading value from stdin: %w", err)
	}
	return data, nil
}
