package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultListenAddr = ":8080"
const defaultConnectionString = "Host=localhost;Port=5432;Database=piggybank_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChannelID = "PiggybankWeb"
const defaultChannelKey = "PiggybankKey001"
const defaultStorageDriver = "memory"

type Config struct {
	ListenAddr    string
	StorageDriver string
	DatabaseDSN   string
	MigrationsDir string
	RedisAddr     string
	WebhookURL    string
	ChannelID     string
	ChannelKey    string
}

func Load() (Config, error) {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	if driver == "" {
		driver = defaultStorageDriver
	}

	conn := strings.TrimSpace(os.Getenv("DATABASE_DSN"))
	if conn == "" {
		conn = defaultConnectionString
	}

	channelID := strings.TrimSpace(os.Getenv("CHANNEL_ID"))
	if channelID == "" {
		channelID = defaultChannelID
	}

	channelKey := strings.TrimSpace(os.Getenv("CHANNEL_KEY"))
	if channelKey == "" {
		channelKey = defaultChannelKey
	}

	return Config{
		ListenAddr:    listenAddr,
		StorageDriver: driver,
		DatabaseDSN:   normalizeConnectionString(conn),
		MigrationsDir: "migrations",
		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		WebhookURL:    strings.TrimSpace(os.Getenv("NOTIFY_WEBHOOK_URL")),
		ChannelID:     channelID,
		ChannelKey:    channelKey,
	}, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
