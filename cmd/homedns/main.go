// Command homedns runs the authoritative DNS listener and its REST
// control plane from a single process and configuration file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/vadim-su/homedns/internal/auth"
	"github.com/vadim-su/homedns/internal/config"
	"github.com/vadim-su/homedns/internal/httpserver"
	"github.com/vadim-su/homedns/internal/rest"
	"github.com/vadim-su/homedns/internal/server"
	"github.com/vadim-su/homedns/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = runStart(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("homedns: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: homedns <start|config> [flags]")
	fmt.Fprintln(os.Stderr, "  homedns start --config <path>")
	fmt.Fprintln(os.Stderr, "  homedns config dump --config <path>")
}

func loadConfig(configPath string) (*config.Config, error) {
	loader := config.NewLoader()
	if configPath != "" {
		return loader.LoadFromPath(configPath)
	}
	return loader.Load()
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "path to homedns.yaml")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recordStore, err := store.New(ctx, storeConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer recordStore.Close()

	dnsServer, err := server.New(cfg, recordStore)
	if err != nil {
		return fmt.Errorf("failed to initialize DNS server: %w", err)
	}

	var authenticator *auth.Authenticator
	if cfg.ActiveAuthMode() == config.AuthModeJWT {
		registry := auth.NewRegistry(cfg.JWTAuth.Subjects, certDirFor(cfg.JWTAuth.Subjects))
		authenticator = auth.NewAuthenticator(registry, auth.AuthenticatorConfig{
			Algorithms: cfg.JWTAuth.Algorithms,
			Issuer:     cfg.JWTAuth.Issuer,
			Audience:   cfg.JWTAuth.Audience,
			Leeway:     cfg.JWTAuth.Leeway,
		})
	}

	restHandler := rest.NewHandler(recordStore, authenticator, cfg)
	httpSrv := httpserver.New(cfg, restHandler.Router())
	if err := httpSrv.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP control plane: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down")
		httpSrv.Shutdown(context.Background())
		dnsServer.Close()
	}()

	log.Printf("homedns starting (soa_domains=%v)", cfg.DNS.SOADomains)
	return dnsServer.Start()
}

// certDirFor derives the subject certificate directory from the
// subjects registry file's own directory, matching the layout the JWT
// admin tool writes to.
func certDirFor(subjectsPath string) string {
	dir := subjectsPath
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' {
			return dir[:i] + "/certs"
		}
	}
	return "certs"
}

func storeConfig(cfg *config.Config) store.Config {
	return store.Config{
		Backend:    store.BackendSurreal,
		SQLitePath: cfg.DNS.Database.SQLite.Path,
		Validation: &store.ValidationConfig{Enabled: true, AllowUnderscore: true},
	}
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "path to homedns.yaml")

	if len(args) == 0 {
		return fmt.Errorf("expected a config subcommand (dump)")
	}

	sub := args[0]
	fs.Parse(args[1:])

	switch sub {
	case "dump":
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		fmt.Print(string(data))
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q", sub)
	}
}
