// Command devtoken mints a bearer token for local testing.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	jwtsvc "meetingrooms/internal/pkg/jwt"
)

func main() {
	secret := pflag.String("secret", os.Getenv("JWT_SECRET"), "signing secret (defaults to $JWT_SECRET)")
	userID := pflag.String("user", "dev-user", "user id claim")
	name := pflag.String("name", "Dev", "display name claim")
	role := pflag.String("role", "member", "role claim (member or admin)")
	ttl := pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	pflag.Parse()

	if *secret == "" {
		log.Fatal("secret is empty: pass --secret or set JWT_SECRET")
	}

	token, err := jwtsvc.New(*secret, *ttl).GenerateToken(*userID, *name, *role)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
