// Command devtoken mints a bearer token for local testing of the /rti routes.
// It signs with the same JWT_* settings the server reads.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	jwttoken "rtidesk/internal/jwt_token"
	"rtidesk/internal/platform/config"
	id "rtidesk/pkg/domain"
)

func main() {
	userFlag := flag.String("user", "", "user id (UUID); random when empty")
	email := flag.String("email", "citizen@example.com", "email claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.FromEnv()

	userID := id.UserID(uuid.New())
	if *userFlag != "" {
		parsed, err := id.ParseUserID(*userFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalid -user:", err)
			os.Exit(2)
		}
		userID = parsed
	}

	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	token, err := svc.GenerateAccessToken(userID, *email, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mint token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
