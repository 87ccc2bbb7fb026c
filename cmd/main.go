package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/config"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/notification"
	"github.com/claimdesk/claims-crm/internal/server"
	"github.com/claimdesk/claims-crm/internal/utils"
	"github.com/claimdesk/claims-crm/internal/utils/db"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	ctx := context.Background()
	database, err := db.GetDB(ctx, cfg)
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}
	defer db.Close(database)

	if err := bootstrapAdmin(database, cfg); err != nil {
		log.Fatal("Error creating bootstrap admin:", err)
	}

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)
	if err != nil {
		log.Fatal("Error configuring sessions:", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           server.NewRouter(database, cfg, sessions, notification.New(cfg.NotifyWebhookURL)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server running on http://localhost:%s (%s)", cfg.ServerPort, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// bootstrapAdmin creates ADMIN_EMAIL as an admin when the users table is empty.
func bootstrapAdmin(database *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	var count int64
	if err := database.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin := models.User{
		FullName:     "Administrator",
		Email:        strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := database.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Bootstrap admin %s created", admin.Email)
	return nil
}
