package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/omni-glass/host/internal/config"
	"github.com/omni-glass/host/internal/hostapi"
	"github.com/omni-glass/host/internal/llm"
)

// configProviderManager implements hostapi.ProviderManager against the
// host's on-disk YAML config, following the same load-raw/mutate/write
// pattern config.Load itself uses to resolve $include and environment
// substitution on every read: every mutation re-reads the file fresh so
// a concurrent edit to another section is never clobbered.
type configProviderManager struct {
	mu         sync.Mutex
	configPath string
	cfg        *config.Config
}

func newConfigProviderManager(configPath string, cfg *config.Config) *configProviderManager {
	return &configProviderManager{configPath: configPath, cfg: cfg}
}

func (m *configProviderManager) ProviderStatus() hostapi.ProviderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.cfg.LLM.Providers))
	for id := range m.cfg.LLM.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	status := hostapi.ProviderStatus{ActiveProvider: m.cfg.LLM.ActiveProvider}
	for _, id := range ids {
		pc := m.cfg.LLM.Providers[id]
		status.Providers = append(status.Providers, hostapi.ProviderInfo{
			ID:           id,
			DefaultModel: pc.DefaultModel,
			Remote:       pc.Remote,
			HasAPIKey:    resolveAPIKey(pc) != "",
		})
	}
	return status
}

func (m *configProviderManager) SetActiveProvider(providerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cfg.LLM.Providers[providerID]; !ok {
		return fmt.Errorf("unknown provider %q", providerID)
	}

	raw, err := config.LoadRaw(m.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.SetActiveProvider(raw, providerID)
	if err := config.WriteRaw(m.configPath, raw); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	m.cfg.LLM.ActiveProvider = providerID
	return nil
}

func (m *configProviderManager) SaveAPIKey(providerID, apiKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cfg.LLM.Providers[providerID]; !ok {
		return fmt.Errorf("unknown provider %q", providerID)
	}

	raw, err := config.LoadRaw(m.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.SetProviderAPIKey(raw, providerID, apiKey)
	if err := config.WriteRaw(m.configPath, raw); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	pc := m.cfg.LLM.Providers[providerID]
	pc.APIKey = apiKey
	m.cfg.LLM.Providers[providerID] = pc
	return nil
}

// TestProvider builds the named provider from its current configuration
// and issues a minimal classify call against it, the same path a real
// session would take. A provider that streams back any error chunk or
// fails to open the stream at all counts as a failed test.
func (m *configProviderManager) TestProvider(ctx context.Context, providerID string) error {
	m.mu.Lock()
	pc, ok := m.cfg.LLM.Providers[providerID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown provider %q", providerID)
	}

	provider, err := buildProvider(config.LLMConfig{
		ActiveProvider: providerID,
		Providers:      map[string]config.LLMProviderConfig{providerID: pc},
	})
	if err != nil {
		return err
	}

	testCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	chunks, err := provider.StreamClassify(testCtx, llm.Request{
		System:      "Reply with the single word ok.",
		UserMessage: "ping",
		MaxTokens:   8,
	})
	if err != nil {
		return err
	}
	for chunk := range chunks {
		if chunk.Err != nil {
			return chunk.Err
		}
	}
	return nil
}
