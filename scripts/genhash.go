package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Prints a bcrypt hash plus the SQL to seed or promote an admin account.
// Usage: go run ./scripts/genhash.go admin@riseacademy.id 'S3cret!pass'
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: genhash <email> <password>")
		os.Exit(2)
	}
	email, password := os.Args[1], os.Args[2]

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Hash: %s\n\n", hash)
	fmt.Printf("INSERT INTO users (id, name, email, password_hash, role)\n"+
		"VALUES (gen_random_uuid()::text, 'Admin', '%s', '%s', 'ADMIN')\n"+
		"ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = 'ADMIN';\n", email, hash)
}
