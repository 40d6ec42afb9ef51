package config

import "testing"

func clearAccountEnv(t *testing.T) {
	t.Helper()
	t.Setenv("WB_API_TOKEN", "")
	t.Setenv("WB_API_TOKEN_1", "")
	t.Setenv("OZON_CLIENT_ID_1", "")
	t.Setenv("OZON_API_KEY_1", "")
	t.Setenv("OZON_SKUS_1", "")
}

func TestLoadDefaults(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Port)
	}
	if cfg.Timezone != "Europe/Moscow" {
		t.Fatalf("expected default timezone, got %q", cfg.Timezone)
	}
	if cfg.CacheTTLSeconds != 1800 {
		t.Fatalf("expected default cache ttl, got %d", cfg.CacheTTLSeconds)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected default token ttl, got %d", cfg.AccessTokenTTLMinutes)
	}
	if len(cfg.WBAccounts) != 0 || len(cfg.OzonAccounts) != 0 {
		t.Fatalf("expected no accounts from empty env, got %+v", cfg)
	}
}

func TestLoadInvalidTTLFallsBack(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("CACHE_TTL_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.CacheTTLSeconds != 1800 {
		t.Fatalf("invalid ttl must fall back to the default, got %d", cfg.CacheTTLSeconds)
	}
}

func TestLoadWBAccounts(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("WB_API_TOKEN", "primary")
	t.Setenv("WB_API_TOKEN_1", "extra-1")
	t.Setenv("WB_API_TOKEN_2", "extra-2")
	// A gap ends the scan.
	t.Setenv("WB_API_TOKEN_4", "never-seen")

	cfg := Load()
	if len(cfg.WBAccounts) != 3 {
		t.Fatalf("expected 3 wb accounts, got %d", len(cfg.WBAccounts))
	}
	if cfg.WBAccounts[0].Token != "primary" || cfg.WBAccounts[2].Token != "extra-2" {
		t.Fatalf("unexpected tokens: %+v", cfg.WBAccounts)
	}
}

func TestLoadOzonAccounts(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("OZON_CLIENT_ID_1", "c1")
	t.Setenv("OZON_API_KEY_1", "k1")
	t.Setenv("OZON_SKUS_1", "100, 200 ,,300")
	t.Setenv("OZON_CLIENT_ID_2", "c2")
	t.Setenv("OZON_API_KEY_2", "k2")

	cfg := Load()
	if len(cfg.OzonAccounts) != 2 {
		t.Fatalf("expected 2 ozon accounts, got %d", len(cfg.OzonAccounts))
	}
	a := cfg.OzonAccounts[0]
	if a.ClientID != "c1" || a.APIKey != "k1" {
		t.Fatalf("unexpected first account: %+v", a)
	}
	if len(a.SKUs) != 3 || a.SKUs[0] != "100" || a.SKUs[1] != "200" || a.SKUs[2] != "300" {
		t.Fatalf("unexpected sku list: %v", a.SKUs)
	}
	if len(cfg.OzonAccounts[1].SKUs) != 0 {
		t.Fatalf("expected empty sku list for second account, got %v", cfg.OzonAccounts[1].SKUs)
	}
}

func TestLoadOzonAccountStopsAtGap(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("OZON_CLIENT_ID_1", "c1")
	// API key missing: the pair is incomplete.

	cfg := Load()
	if len(cfg.OzonAccounts) != 0 {
		t.Fatalf("incomplete credential pair must be skipped, got %+v", cfg.OzonAccounts)
	}
}

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	clearAccountEnv(t)
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.AdminPassword != "" {
		t.Fatalf("expected empty ADMIN_PASSWORD when unset, got %q", cfg.AdminPassword)
	}
}
