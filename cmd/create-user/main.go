// Command create-user adds a login to the users table.
//
//	go run ./cmd/create-user -email ops@example.com -name "Ops Lead" -role admin
//
// When -password is omitted a temporary password is generated and printed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/claimdesk/claims-crm/internal/config"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"github.com/claimdesk/claims-crm/internal/utils/db"
)

var roles = map[string]bool{
	models.RoleAdmin:    true,
	models.RoleManager:  true,
	models.RoleAgent:    true,
	models.RoleSurveyor: true,
}

func main() {
	email := flag.String("email", "", "login email (required)")
	name := flag.String("name", "", "full name (required)")
	role := flag.String("role", models.RoleAgent, "admin, manager, agent or surveyor")
	password := flag.String("password", "", "password; generated when empty")
	flag.Parse()

	if *email == "" || *name == "" {
		flag.Usage()
		log.Fatal("-email and -name are required")
	}
	if !roles[*role] {
		log.Fatalf("unknown role %q", *role)
	}

	pass := *password
	generated := pass == ""
	if generated {
		var err error
		if pass, err = utils.GenerateTemporaryPassword(); err != nil {
			log.Fatal(err)
		}
	}
	hash, err := utils.HashPassword(pass)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	database, err := db.GetDB(context.Background(), cfg)
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}
	defer db.Close(database)

	u := models.User{
		FullName:     strings.TrimSpace(*name),
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		PasswordHash: hash,
		Role:         *role,
		IsActive:     true,
	}
	if err := database.Create(&u).Error; err != nil {
		log.Fatal("Error creating user:", err)
	}

	fmt.Printf("Created user %d <%s> with role %s\n", u.ID, u.Email, u.Role)
	if generated {
		fmt.Printf("Temporary password: %s\n", pass)
	}
}
