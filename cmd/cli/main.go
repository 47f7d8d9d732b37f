package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmfields/stockroom/internal/models"
	"github.com/jmfields/stockroom/internal/store"
)

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	role := addUserCmd.String("role", models.RoleUser, "Role for the new user (admin or user)")

	if len(os.Args) < 2 {
		fmt.Println("expected 'add-user' subcommand")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		if *role != models.RoleAdmin && *role != models.RoleUser {
			fmt.Println("role must be 'admin' or 'user'")
			os.Exit(1)
		}
		createUser(*username, *password, *role)
	default:
		fmt.Println("expected 'add-user' subcommand")
		os.Exit(1)
	}
}

func createUser(username, password, role string) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./inventory.db"
	}

	db, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	// Ensure tables exist if running the cli before the server
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to init schema: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := db.CreateUser(username, string(hashedPassword), role); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User '%s' created successfully with role '%s'.\n", username, role)
}
