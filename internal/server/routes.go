// Package server wires the HTTP routes, CORS and request logging.
package server

import (
	"net/http"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/claim"
	"github.com/claimdesk/claims-crm/internal/config"
	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/lead"
	"github.com/claimdesk/claims-crm/internal/notification"
	"github.com/claimdesk/claims-crm/internal/payment"
	"github.com/claimdesk/claims-crm/internal/policy"
	"github.com/claimdesk/claims-crm/internal/renewal"
	"github.com/claimdesk/claims-crm/internal/surveyor"
	"github.com/claimdesk/claims-crm/internal/user"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

// NewRouter returns the full API handler: logging, CORS, then the routes.
func NewRouter(db *gorm.DB, cfg *config.Config, sessions *auth.Sessions, notifier notification.Notifier) http.Handler {
	authHandler := auth.NewHandler(db, sessions)
	claimHandler := claim.NewHandler(db, notifier)
	surveyorHandler := surveyor.NewHandler(db)
	policyHandler := policy.NewHandler(db)
	renewalHandler := renewal.NewHandler(db, notifier, cfg.RenewalWindowDays)
	paymentHandler := payment.NewHandler(payment.NewRepository(db))
	leadHandler := lead.NewHandler(db)
	userHandler := user.NewHandler(db)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, r, httpx.NotFound("route not found"), "route")
	})

	// Public
	r.HandleFunc("/health", health(db)).Methods("GET")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(authHandler.Authenticate)
	admin := func(h http.HandlerFunc) http.Handler { return auth.RequireAdmin(h) }

	// Sessions
	api.HandleFunc("/auth/session", authHandler.Session).Methods("GET")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")

	// Claims
	api.HandleFunc("/claims", claimHandler.ListClaims).Methods("GET")
	api.HandleFunc("/claims", claimHandler.CreateClaim).Methods("POST")
	api.HandleFunc("/claims/{id}", claimHandler.GetClaim).Methods("GET")
	api.HandleFunc("/claims/{id}", claimHandler.UpdateClaimStatus).Methods("PUT")
	api.HandleFunc("/claims/{id}/assign-surveyor", claimHandler.GetAssignment).Methods("GET")
	api.HandleFunc("/claims/{id}/assign-surveyor", claimHandler.AssignSurveyor).Methods("POST")
	api.HandleFunc("/claims/{id}/assign-surveyor", claimHandler.RemoveAssignment).Methods("DELETE")
	api.HandleFunc("/claims/{id}/survey", claimHandler.GetSurvey).Methods("GET")
	api.HandleFunc("/claims/{id}/survey", claimHandler.UpsertSurvey).Methods("POST")
	api.HandleFunc("/claims/{id}/survey", claimHandler.DeleteSurvey).Methods("DELETE")
	api.HandleFunc("/claims/{id}/documents", claimHandler.ListDocuments).Methods("GET")
	api.HandleFunc("/claims/{id}/documents", claimHandler.CreateDocument).Methods("POST")
	api.HandleFunc("/claims/{id}/documents/{docId}", claimHandler.GetDocument).Methods("GET")
	api.HandleFunc("/claims/{id}/documents/{docId}", claimHandler.DeleteDocument).Methods("DELETE")
	api.HandleFunc("/claims/{id}/documents/{docId}/download", claimHandler.DownloadDocument).Methods("GET")
	api.HandleFunc("/claims/{id}/notes", claimHandler.ListNotes).Methods("GET")
	api.HandleFunc("/claims/{id}/notes", claimHandler.CreateNote).Methods("POST")
	api.HandleFunc("/claims/{id}/payments", paymentHandler.List).Methods("GET")

	// Surveyors
	api.HandleFunc("/surveyors", surveyorHandler.ListSurveyors).Methods("GET")
	api.HandleFunc("/surveyors", surveyorHandler.CreateSurveyor).Methods("POST")
	api.HandleFunc("/surveyors/{id}", surveyorHandler.GetSurveyor).Methods("GET")
	api.HandleFunc("/surveyors/{id}", surveyorHandler.UpdateSurveyor).Methods("PUT")
	api.HandleFunc("/surveyors/{id}", surveyorHandler.DeleteSurveyor).Methods("DELETE")
	api.HandleFunc("/surveyors/{id}/claims", surveyorHandler.AssignedClaims).Methods("GET")

	// Policies, holders, vehicles
	api.HandleFunc("/policy-holders", policyHandler.ListHolders).Methods("GET")
	api.HandleFunc("/policy-holders", policyHandler.CreateHolder).Methods("POST")
	api.HandleFunc("/policy-holders/{id}", policyHandler.GetHolder).Methods("GET")
	api.HandleFunc("/policy-holders/{id}", policyHandler.UpdateHolder).Methods("PUT")
	api.HandleFunc("/policy-holders/{id}", policyHandler.DeleteHolder).Methods("DELETE")
	api.HandleFunc("/vehicles", policyHandler.ListVehicles).Methods("GET")
	api.HandleFunc("/vehicles", policyHandler.CreateVehicle).Methods("POST")
	api.HandleFunc("/vehicles/{id}", policyHandler.GetVehicle).Methods("GET")
	api.HandleFunc("/vehicles/{id}", policyHandler.UpdateVehicle).Methods("PUT")
	api.HandleFunc("/vehicles/{id}", policyHandler.DeleteVehicle).Methods("DELETE")
	api.HandleFunc("/policies", policyHandler.ListPolicies).Methods("GET")
	api.HandleFunc("/policies", policyHandler.CreatePolicy).Methods("POST")
	api.HandleFunc("/policies/{id}", policyHandler.GetPolicy).Methods("GET")
	api.HandleFunc("/policies/{id}", policyHandler.UpdatePolicy).Methods("PUT")
	api.HandleFunc("/policies/{id}", policyHandler.DeletePolicy).Methods("DELETE")

	// Renewals
	api.HandleFunc("/renewals", renewalHandler.ListRenewals).Methods("GET")
	api.HandleFunc("/renewals", renewalHandler.CreateRenewal).Methods("POST")
	api.HandleFunc("/renewals/{id}", renewalHandler.GetRenewal).Methods("GET")
	api.HandleFunc("/renewals/{id}/assign", renewalHandler.AssignRenewal).Methods("PUT")
	api.HandleFunc("/renewals/{id}/status", renewalHandler.ChangeStatus).Methods("PUT")
	api.HandleFunc("/renewals/{id}/activities", renewalHandler.ListActivities).Methods("GET")
	api.HandleFunc("/renewals/{id}/activities", renewalHandler.LogActivity).Methods("POST")

	// Leads; catalog must be registered before {id}
	api.HandleFunc("/leads/catalog", leadHandler.Catalog).Methods("GET")
	api.HandleFunc("/leads", leadHandler.ListLeads).Methods("GET")
	api.HandleFunc("/leads", leadHandler.CreateLead).Methods("POST")
	api.HandleFunc("/leads/{id}", leadHandler.GetLead).Methods("GET")
	api.HandleFunc("/leads/{id}", leadHandler.UpdateLead).Methods("PUT")
	api.HandleFunc("/leads/{id}", leadHandler.DeleteLead).Methods("DELETE")
	api.HandleFunc("/lead-sources", leadHandler.ListSources).Methods("GET")
	api.HandleFunc("/lead-sources", leadHandler.CreateSource).Methods("POST")
	api.HandleFunc("/lead-sources/{id}", leadHandler.GetSource).Methods("GET")
	api.HandleFunc("/lead-sources/{id}", leadHandler.UpdateSource).Methods("PUT")
	api.HandleFunc("/lead-sources/{id}", leadHandler.DeleteSource).Methods("DELETE")

	// Users, roles, settings
	api.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	api.Handle("/users", admin(userHandler.CreateUser)).Methods("POST")
	api.HandleFunc("/users/{id}", userHandler.GetUser).Methods("GET")
	api.Handle("/users/{id}", admin(userHandler.UpdateUser)).Methods("PUT")
	api.Handle("/users/{id}", admin(userHandler.DeleteUser)).Methods("DELETE")
	api.HandleFunc("/roles", userHandler.ListRoles).Methods("GET")
	api.HandleFunc("/settings", userHandler.GetSettings).Methods("GET")
	api.Handle("/settings", admin(userHandler.UpdateSettings)).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return Logging(c.Handler(r))
}

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			httpx.WriteError(w, r, httpx.Upstream("database unavailable", err), "health")
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
