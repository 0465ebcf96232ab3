package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/angelmondragon/pixfunnel-backend/pkg/config"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/security"
)

// admin-hash prints the argon2id hash to put in PIXFUNNEL_ADMIN_PASSWORD_HASH.
// The password is read from -password or, when empty, from the first line of stdin.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "admin-hash", Output: os.Stderr})

	_ = godotenv.Load()

	password := flag.String("password", "", "admin password to hash (defaults to stdin)")
	flag.Parse()

	var params config.PasswordConfig
	if err := envconfig.Process(config.EnvPrefix, &params); err != nil {
		logg.Error(ctx, "failed to load password params", err)
		os.Exit(1)
	}

	raw := *password
	if raw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logg.Error(ctx, "failed to read password from stdin", err)
			os.Exit(1)
		}
		raw = strings.TrimRight(line, "\r\n")
	}

	hash, err := security.HashPassword(raw, params)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
