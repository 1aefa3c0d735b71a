package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/examgate/examgate/internal/api/http"
	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/config"
	"github.com/examgate/examgate/internal/db"
	"github.com/examgate/examgate/internal/eventlog"
	"github.com/examgate/examgate/internal/exam"
	"github.com/examgate/examgate/internal/rbac"
	"github.com/examgate/examgate/internal/session"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	sessionStore := session.NewSQLStore(dbh)
	examStore := exam.NewSQLStore(dbh)
	audit := eventlog.NewRepo(dbh)

	var policy session.AttemptPolicy = session.AllowMultipleAttempts{}
	if cfg.AttemptPolicy == "single" {
		policy = session.SingleAttemptPolicy{}
	}
	facade := session.New(sessionStore,
		session.WithPolicy(policy),
		session.WithAuditor(audit),
	)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	var resolver auth.IdentityResolver = auth.AnonymousResolver{}
	if cfg.AuthMode == "token" {
		resolver = auth.TokenResolver{Svc: authSvc}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/api/auth/login", auth.LoginHandler(authSvc, dbh))
		r.Post("/api/auth/register", auth.RegisterHandler(dbh))
		r.With(auth.JWTMiddleware(authSvc)).Get("/api/auth/user", auth.MeHandler(dbh))
	}

	// guard wraps admin-only surfaces with JWT + RBAC when running in token
	// mode; the anonymous deployment leaves everything open, like the
	// simplified system it replaces.
	guard := func(perm string) func(http.Handler) http.Handler {
		if cfg.AuthMode != "token" {
			return func(next http.Handler) http.Handler { return next }
		}
		jwtmw := auth.JWTMiddleware(authSvc)
		rbacmw := rbac.Require(perm)
		return func(next http.Handler) http.Handler { return jwtmw(rbacmw(next)) }
	}

	r.Route("/api/exams", func(er chi.Router) {
		er.With(guard("exam:view")).Get("/", api.ListExamsHandler(examStore))
		er.With(guard("exam:view")).Get("/available", api.AvailableExamsHandler(examStore))
		er.With(guard("exam:create")).Post("/", api.CreateExamHandler(examStore))
		er.With(guard("exam:view")).Get("/{examID}", api.GetExamHandler(examStore))
		er.With(guard("exam:update")).Put("/{examID}", api.UpdateExamHandler(examStore))
		er.With(guard("exam:delete")).Delete("/{examID}", api.DeleteExamHandler(examStore))

		er.With(guard("exam:view")).Get("/{examID}/questions", api.ListQuestionsHandler(examStore))
		er.With(guard("exam:create")).Post("/{examID}/questions", api.CreateQuestionHandler(examStore))

		er.With(guard("attempt:create")).Post("/{examID}/start", api.StartAttemptHandler(facade, resolver))
		er.With(guard("attempt:view-all")).Get("/{examID}/results", api.ExamResultsHandler(sessionStore))
	})

	r.Route("/api/attempts", func(ar chi.Router) {
		ar.With(guard("attempt:view-own")).Get("/", api.MyAttemptsHandler(sessionStore))
		ar.With(guard("attempt:view-own")).Get("/{attemptID}", api.GetAttemptHandler(facade))
		ar.With(guard("attempt:view-own")).Get("/{attemptID}/answers", api.ListAnswersHandler(facade))
		ar.With(guard("attempt:save")).Post("/{attemptID}/answers", api.SaveAnswerHandler(facade))
		ar.With(guard("attempt:submit")).Post("/{attemptID}/submit", api.SubmitAttemptHandler(facade))
		ar.With(guard("attempt:submit")).Post("/{attemptID}/time-up", api.TimeUpHandler(facade))
		ar.With(guard("attempt:view-own")).Get("/{attemptID}/results", api.ResultsHandler(facade))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (auth=%s, policy=%s, db=%s)", cfg.HTTPAddr, cfg.AuthMode, cfg.AttemptPolicy, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
