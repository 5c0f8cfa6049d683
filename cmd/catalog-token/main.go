package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"model_catalog/internal/auth"
)

func main() {
	_ = godotenv.Load()

	subject := flag.String("subject", "", "token subject, e.g. an operator e-mail")
	rolesFlag := flag.String("roles", string(auth.RoleViewer), "comma-separated roles (admin, viewer)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "ERROR: JWT_SECRET must be set")
		os.Exit(1)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -subject is required")
		os.Exit(1)
	}

	var roles []auth.Role
	for _, name := range strings.Split(*rolesFlag, ",") {
		role, err := auth.ParseRole(strings.TrimSpace(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		roles = append(roles, role)
	}

	token, expiresAt, err := auth.GenerateAdminJWT([]byte(secret), *subject, roles, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to generate token: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Token for %s (%s) expires at %s\n", *subject, *rolesFlag, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
