package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/driven"
	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/recon"
	"github.com/BetterCallFirewall/SecurityCenter/internal/storage"
	"github.com/BetterCallFirewall/SecurityCenter/internal/subscription"
)

// buildOrchestrator initialises genkit and the flows. Without a usable
// credential the flows are left undefined and every analysis reports the
// configuration error instead of failing at startup.
func buildOrchestrator(ctx context.Context, cfg *config.Config, opts ...driven.Option) (*driven.Orchestrator, error) {
	invokers := driven.Invokers{}

	if status := cfg.CredentialStatus(); status.Configured {
		g, err := llm.InitGenkitApp(ctx, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("initializing genkit: %w", err)
		}
		invokers = driven.NewInvokers(llm.DefineFlows(g, cfg.LLM.ModelName()))
		log.Printf("🤖 Flows registered with model %s", cfg.LLM.ModelName())
	} else {
		log.Printf("⚠️ %s is not configured; analyses will report a configuration error", status.Name)
	}

	base := []driven.Option{driven.WithCredentials(cfg.CredentialStatus)}
	if cfg.Recon.PrefetchURL {
		client := recon.NewClient(recon.ClientConfig{Timeout: cfg.Recon.Timeout})
		base = append(base, driven.WithPrefetcher(recon.NewPrefetcher(client)))
		log.Printf("🔎 URL prefetch enabled")
	}

	return driven.NewOrchestrator(invokers, append(base, opts...)...), nil
}

func newStore(cfg config.StorageConfig) (storage.Store, error) {
	if cfg.SQLitePath == "" {
		return storage.NewMemoryStorage(cfg.MaxHistory), nil
	}
	store, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.MaxHistory)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	log.Printf("💾 Analysis history stored in %s", cfg.SQLitePath)
	return store, nil
}

// newResolver combines the static premium list with the profile database.
// The returned close function is never nil.
func newResolver(ctx context.Context, cfg config.SubscriptionConfig) (subscription.Resolver, func(), error) {
	var chain subscription.ChainResolver
	closeFn := func() {}

	if len(cfg.PremiumUser) > 0 {
		chain = append(chain, subscription.NewStaticResolver(cfg.PremiumUser))
	}
	if cfg.DatabaseURL != "" {
		pool, err := subscription.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = pool.Close
		chain = append(chain, subscription.NewPostgresResolver(pool))
		log.Printf("👤 Subscription status read from profile database")
	}

	if len(chain) == 0 {
		return nil, closeFn, nil
	}
	return chain, closeFn, nil
}

// readJSON decodes a file ("-" is stdin)
func readJSON(path string, stdin io.Reader, dst any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
