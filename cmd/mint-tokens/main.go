package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/avstrong/campusnest/internal/auth"
	"github.com/avstrong/campusnest/internal/config"
	"github.com/avstrong/campusnest/internal/rental"
	"github.com/avstrong/campusnest/internal/stress"
)

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file (or CAMPUSNEST_CONFIG)")
	count := pflag.Int("count", 50, "number of tokens to mint") //nolint:gomnd
	prefix := pflag.String("prefix", "student-", "user id prefix")
	role := pflag.String("role", string(rental.RoleStudent), "role claim: student or owner")
	out := pflag.String("out", "tokens.json", "output file")
	pflag.Parse()

	if err := run(*configPath, *count, *prefix, rental.Role(*role), *out); err != nil {
		fmt.Fprintf(os.Stderr, "mint-tokens: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, count int, prefix string, role rental.Role, out string) error {
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	if role != rental.RoleStudent && role != rental.RoleOwner {
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("init issuer: %w", err)
	}

	tokens := make([]string, count)
	for i := range tokens {
		if tokens[i], err = issuer.Issue(fmt.Sprintf("%s%d", prefix, i+1), role); err != nil {
			return err
		}
	}

	if err := stress.WriteTokens(out, tokens); err != nil {
		return err
	}

	fmt.Printf("wrote %d %s token(s) to %s\n", count, role, out)

	return nil
}
