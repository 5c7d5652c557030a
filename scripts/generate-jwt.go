package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Prints a Supabase-style access token for calling function routes locally.
func main() {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	supabaseURL := os.Getenv("SUPABASE_URL")
	if secret == "" || supabaseURL == "" {
		fmt.Fprintln(os.Stderr, "Error: SUPABASE_JWT_SECRET and SUPABASE_URL environment variables must be set")
		fmt.Fprintln(os.Stderr, "Usage: SUPABASE_JWT_SECRET=secret SUPABASE_URL=https://xyz.supabase.co go run scripts/generate-jwt.go")
		os.Exit(1)
	}

	subject := os.Getenv("TEST_USER_ID")
	if subject == "" {
		subject = "local-test-user"
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": "authenticated",
		"aud":  "authenticated",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
		"iss":  supabaseURL + "/auth/v1",
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(tokenString)
	fmt.Fprintf(os.Stderr, "\ncurl -X POST http://localhost:8080/functions/v1/feedback \\\n"+
		"  -H 'Authorization: Bearer %s' \\\n"+
		"  -H 'Content-Type: application/json' \\\n"+
		"  -d '{\"email\":\"you@example.com\",\"message\":\"hello\",\"rating\":5}'\n", tokenString)
}
