package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "medication-tracker/internal/adapters/storage/memory"
	pg "medication-tracker/internal/adapters/storage/postgres"
	"medication-tracker/internal/domain/adherence"
	"medication-tracker/internal/domain/interactions"
	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/domain/prescriptions"
	"medication-tracker/internal/domain/schedule"
	"medication-tracker/internal/middleware"
	"medication-tracker/internal/platform/logger"
	"medication-tracker/internal/ports/auth"
	"medication-tracker/internal/ports/medinfo"

	_ "medication-tracker/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: proveedor de info de medicamentos. Si es nil, las rutas
	// de interacciones responden 503.
	MedInfo medinfo.Provider

	// Opcional: si es nil, no se loguea desde el router.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		medRepo   medications.Repository
		adhRepo   adherence.Repository
		prescRepo prescriptions.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else if opts.Logger != nil {
				opts.Logger.Warn("postgres open failed, falling back to memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		medRepo = pg.NewMedicationsRepo(db)
		adhRepo = pg.NewAdherenceRepo(db)
		prescRepo = pg.NewPrescriptionsRepo(db)
	} else {
		medRepo = mem.NewMedicationRepo()
		adhRepo = mem.NewAdherenceRepo()
		prescRepo = mem.NewPrescriptionRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medRepo)
	adhSvc := adherence.NewService(adhRepo)
	prescSvc := prescriptions.NewService(prescRepo)
	scheduleSvc := schedule.NewService(medsSvc, adhSvc)

	// Rutas por módulo. schedule va antes que medications para que
	// /medications/schedule no caiga en /medications/{medicationID}.
	schedule.RegisterRoutes(r, scheduleSvc)
	interactions.RegisterRoutes(r, opts.MedInfo, medsSvc)
	medications.RegisterRoutes(r, medsSvc)
	adherence.RegisterRoutes(r, adhSvc, medsSvc)
	prescriptions.RegisterRoutes(r, prescSvc, medsSvc)

	return r
}
