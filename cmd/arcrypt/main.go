// Command arcrypt encrypts and decrypts files with the arc4 stream cipher.
//
// Encrypted files start with the 4-byte IV used for that file, followed by
// the ciphertext. Every file gets its own random IV, so the same key can
// safely cover many files.
//
//	arcrypt -encrypt -key deadbeef file1.txt file2.txt
//	arcrypt -decrypt -key deadbeef file1.txt.arc
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/arcrypt/internal/arc4"
	"github.com/udisondev/arcrypt/internal/config"
	"github.com/udisondev/arcrypt/internal/cryptio"
	"github.com/udisondev/arcrypt/internal/encoding"
)

const (
	ConfigPath       = "config/arcrypt.yaml"
	encryptedSuffix  = ".arc"
	maxParallelFiles = 4
)

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
	encrypt := flag.Bool("encrypt", false, "encrypt the given files")
	decrypt := flag.Bool("decrypt", false, "decrypt the given files")
	keyText := flag.String("key", "", "secret key")
	keyEnc := flag.String("key-encoding", "hex", "key encoding: hex, base64, base91, raw")
	outDir := flag.String("out-dir", "", "write outputs here instead of next to the inputs")
	flag.Parse()

	cfgPath := ConfigPath
	if p := os.Getenv("ARCRYPT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadTool(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	if *encrypt == *decrypt {
		return fmt.Errorf("exactly one of -encrypt or -decrypt is required")
	}
	if flag.NArg() == 0 {
		return fmt.Errorf("no input files given")
	}

	key, err := encoding.DecodeKey(*keyText, *keyEnc)
	if err != nil {
		return fmt.Errorf("parsing key: %w", err)
	}
	if len(key) == 0 {
		return fmt.Errorf("key must not be empty")
	}

	// One goroutine per file, one cipher instance per file: engines share
	// no state, so files transform independently.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)

	for _, path := range flag.Args() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := outputPath(path, *outDir, *encrypt)
			var err error
			if *encrypt {
				err = encryptFile(path, out, key, cfg.ChunkSize)
			} else {
				err = decryptFile(path, out, key, cfg.ChunkSize)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			slog.Info("done", "in", path, "out", out)
			return nil
		})
	}

	return g.Wait()
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// outputPath derives the output file name: encrypt appends .arc, decrypt
// strips it (or appends .dec when the input has no .arc suffix).
func outputPath(in, outDir string, encrypt bool) string {
	base := filepath.Base(in)
	switch {
	case encrypt:
		base += encryptedSuffix
	case strings.HasSuffix(base, encryptedSuffix):
		base = strings.TrimSuffix(base, encryptedSuffix)
	default:
		base += ".dec"
	}
	if outDir == "" {
		return filepath.Join(filepath.Dir(in), base)
	}
	return filepath.Join(outDir, base)
}

func encryptFile(inPath, outPath string, key []byte, chunkSize int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	iv := make([]byte, arc4.IVSize)
	if _, err := rand.Read(iv); err != nil {
		return fmt.Errorf("generating iv: %w", err)
	}

	c, err := arc4.New(key, iv)
	if err != nil {
		return fmt.Errorf("creating cipher: %w", err)
	}
	defer c.Dispose()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	if _, err := out.Write(iv); err != nil {
		return fmt.Errorf("writing iv header: %w", err)
	}
	if _, err := cryptio.Copy(out, in, c, chunkSize); err != nil {
		return err
	}
	return out.Close()
}

func decryptFile(inPath, outPath string, key []byte, chunkSize int) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	iv := make([]byte, arc4.IVSize)
	if _, err := io.ReadFull(in, iv); err != nil {
		return fmt.Errorf("reading iv header: %w", err)
	}

	c, err := arc4.New(key, iv)
	if err != nil {
		return fmt.Errorf("creating cipher: %w", err)
	}
	defer c.Dispose()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	if _, err := cryptio.Copy(out, in, c, chunkSize); err != nil {
		return err
	}
	return out.Close()
}
