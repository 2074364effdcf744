package main

// Print a bcrypt hash for PASS_ADMIN:
//   echo -n 's3nha' | go run ./cmd/hashpass

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"referral-intake/internal/auth"
)

func main() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read password: %v", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		log.Fatal("password is empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
