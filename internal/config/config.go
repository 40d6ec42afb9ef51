package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// WBAccount is one Wildberries seller token.
type WBAccount struct {
	Token string
}

// OzonAccount is one Ozon seller credential pair plus the SKUs tracked
// for that account (the analytics stocks endpoint requires explicit
// SKU ids).
type OzonAccount struct {
	ClientID string
	APIKey   string
	SKUs     []string
}

type Config struct {
	Port          string
	AllowedOrigin string

	Timezone        string
	CacheTTLSeconds int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WBAccounts   []WBAccount
	OzonAccounts []OzonAccount

	AuthSecret            string
	AdminPassword         string
	AccessTokenTTLMinutes int
}

// Load reads configuration from the environment. A .env file in the
// working directory overrides already-set variables, matching how the
// dashboard has always been deployed.
func Load() Config {
	_ = godotenv.Overload()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "1800"))
	if err != nil || ttl < 1 {
		ttl = 1800
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		Timezone:              getEnv("TIMEZONE", "Europe/Moscow"),
		CacheTTLSeconds:       ttl,
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		WBAccounts:            loadWBAccounts(),
		OzonAccounts:          loadOzonAccounts(),
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AdminPassword:         strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		AccessTokenTTLMinutes: tokenTTL,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// loadWBAccounts collects WB_API_TOKEN plus any numbered
// WB_API_TOKEN_1, WB_API_TOKEN_2, ... variables.
func loadWBAccounts() []WBAccount {
	accounts := make([]WBAccount, 0, 2)
	if token := strings.TrimSpace(os.Getenv("WB_API_TOKEN")); token != "" {
		accounts = append(accounts, WBAccount{Token: token})
	}
	for i := 1; ; i++ {
		token := strings.TrimSpace(os.Getenv(fmt.Sprintf("WB_API_TOKEN_%d", i)))
		if token == "" {
			break
		}
		accounts = append(accounts, WBAccount{Token: token})
	}
	return accounts
}

// loadOzonAccounts walks OZON_CLIENT_ID_1/OZON_API_KEY_1/OZON_SKUS_1
// and so on until the first gap.
func loadOzonAccounts() []OzonAccount {
	accounts := make([]OzonAccount, 0, 2)
	for i := 1; ; i++ {
		clientID := strings.TrimSpace(os.Getenv(fmt.Sprintf("OZON_CLIENT_ID_%d", i)))
		apiKey := strings.TrimSpace(os.Getenv(fmt.Sprintf("OZON_API_KEY_%d", i)))
		if clientID == "" || apiKey == "" {
			break
		}
		accounts = append(accounts, OzonAccount{
			ClientID: clientID,
			APIKey:   apiKey,
			SKUs:     splitSKUs(os.Getenv(fmt.Sprintf("OZON_SKUS_%d", i))),
		})
	}
	return accounts
}

func splitSKUs(raw string) []string {
	parts := strings.Split(raw, ",")
	skus := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skus = append(skus, p)
		}
	}
	return skus
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
