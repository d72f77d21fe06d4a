// Command tokengen signs a session token the same way POST /jwt does, for
// exercising protected routes from curl.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wanderventure/wanderventure-server/jwtauth"
)

func main() {
	var (
		secret = flag.String("secret", os.Getenv("ACCESS_TOKEN_SECRET"), "Signing secret, minimum 32 bytes (default $ACCESS_TOKEN_SECRET)")
		email  = flag.String("email", "guest@example.com", "Email identity claim")
		ttl    = flag.Duration("ttl", 0, "Token lifetime; 0 issues a token without exp")
		addr   = flag.String("addr", "http://localhost:5000", "API base URL for the usage hint")
	)
	flag.Parse()

	cfg, err := jwtauth.NewConfig(
		jwtauth.WithHS256([]byte(*secret)),
		jwtauth.WithTokenTTL(*ttl),
	)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	token, err := jwtauth.NewIssuer(cfg).Sign(map[string]interface{}{"email": *email})
	if err != nil {
		log.Fatalf("sign: %v", err)
	}

	fmt.Println("\n=== Session Token ===")
	fmt.Printf("\nToken: %s\n\n", token)
	fmt.Printf("  Email:   %s\n", *email)
	if *ttl > 0 {
		fmt.Printf("  Expires: %s\n\n", time.Now().Add(*ttl).Format(time.RFC3339))
	} else {
		fmt.Print("  Expires: never\n\n")
	}
	fmt.Println("Usage:")
	fmt.Printf("  curl --cookie '%s=%s' '%s/myRooms?email=%s'\n\n", cfg.CookieName(), token, *addr, *email)
}
