package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Backend struct {
	BaseURL        string
	TimeoutSeconds int
}

type Rabbit struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type HTTP struct {
	Port int
}

type Cache struct {
	TablesTTLSeconds int
}

type Config struct {
	Backend Backend
	Rabbit  Rabbit
	HTTP    HTTP
	Cache   Cache
}

// Load reads the service config. The file is a two-level YAML document with
// sections `backend:`, `rabbitmq:`, `http:` and `cache:`; a purpose-built
// scanner is enough for that shape.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var (
		cfg     Config
		section string
	)
	cfg.Backend.TimeoutSeconds = 10
	cfg.Rabbit.Port = 5672
	cfg.Rabbit.VHost = "/"
	cfg.HTTP.Port = 3001
	cfg.Cache.TablesTTLSeconds = 30

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			section = strings.TrimSuffix(line, ":")
			continue
		}
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), `"'`)

		switch section {
		case "backend":
			switch key {
			case "base_url":
				cfg.Backend.BaseURL = val
			case "timeout_seconds":
				cfg.Backend.TimeoutSeconds = atoi(val, 10)
			}
		case "rabbitmq":
			switch key {
			case "host":
				cfg.Rabbit.Host = val
			case "port":
				cfg.Rabbit.Port = atoi(val, 5672)
			case "user":
				cfg.Rabbit.User = val
			case "password":
				cfg.Rabbit.Password = val
			case "vhost":
				if val != "" {
					cfg.Rabbit.VHost = val
				}
			}
		case "http":
			if key == "port" {
				cfg.HTTP.Port = atoi(val, 3001)
			}
		case "cache":
			if key == "tables_ttl_seconds" {
				cfg.Cache.TablesTTLSeconds = atoi(val, 30)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if cfg.Backend.BaseURL == "" {
		return Config{}, fmt.Errorf("backend config incomplete")
	}
	if cfg.Rabbit.Host == "" || cfg.Rabbit.User == "" {
		return Config{}, fmt.Errorf("rabbitmq config incomplete")
	}
	return cfg, nil
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
