package api

import (
	"github.com/gorilla/mux"

	"github.com/neuraltc/capsule-service/internal/api/recovery"
	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/services"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/uploads"
)

// NewRouter wires all HTTP routes. Registration/login and health are
// public; everything else under /api requires a bearer token.
func NewRouter(st store.Store, authn *auth.Authenticator, files *uploads.Store, gen TextGenerator) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)

	guard := auth.NewGuard(st.Patients())

	// Public routes
	authHandler := NewAuthHandler(services.NewCaregiverService(st), authn)
	root.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	root.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Uploaded files are public static assets, same as the original viewer
	// expects.
	root.PathPrefix(uploads.URLPrefix).Handler(files.Handler()).Methods("GET")

	// Authenticated API
	protected := root.PathPrefix("/api").Subrouter()
	protected.Use(RequireAuth(authn))

	patientHandler := NewPatientHandler(services.NewPatientService(st, guard))
	protected.HandleFunc("/patients", patientHandler.CreatePatient).Methods("POST")
	protected.HandleFunc("/patients", patientHandler.ListPatients).Methods("GET")
	protected.HandleFunc("/patients/{patientId}", patientHandler.GetPatient).Methods("GET")
	protected.HandleFunc("/patients/{patientId}", patientHandler.DeletePatient).Methods("DELETE")

	memoryHandler := NewMemoryHandler(services.NewMemoryService(st, guard, files))
	protected.HandleFunc("/memories", memoryHandler.CreateMemory).Methods("POST")
	protected.HandleFunc("/memories/patient/{patientId}", memoryHandler.ListMemories).Methods("GET")
	protected.HandleFunc("/memories/{memoryId}", memoryHandler.DeleteMemory).Methods("DELETE")

	capsuleHandler := NewCapsuleHandler(services.NewCapsuleService(st, guard))
	protected.HandleFunc("/capsules/generate", capsuleHandler.Generate).Methods("POST")
	protected.HandleFunc("/capsules/patient/{patientId}", capsuleHandler.ListCapsules).Methods("GET")
	protected.HandleFunc("/capsules/{capsuleId}", capsuleHandler.GetCapsule).Methods("GET")
	protected.HandleFunc("/capsules/{capsuleId}", capsuleHandler.DeleteCapsule).Methods("DELETE")

	if gen != nil {
		assistHandler := NewAssistHandler(gen)
		protected.HandleFunc("/assist/chat", assistHandler.Chat).Methods("POST")
	}

	return root
}
