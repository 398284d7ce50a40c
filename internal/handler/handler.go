package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/oncallhq/oncall-manager/backend/internal/calendar"
	"github.com/oncallhq/oncall-manager/backend/internal/config"
	"github.com/oncallhq/oncall-manager/backend/internal/repository"
)

type Handler struct {
	validate       *validator.Validate
	config         *config.Config
	repository     *repository.Repository
	translator     ut.Translator
	publishChannel *amqp.Channel
	redisClient    *redis.Client
	calendarClient *calendar.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, pubCh *amqp.Channel, rdb *redis.Client, calClient *calendar.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:       validate,
		config:         cfg,
		repository:     repo,
		translator:     trans,
		publishChannel: pubCh,
		redisClient:    rdb,
		calendarClient: calClient,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// Incoming webhooks authenticate with the registration's shared
	// secret, not a session.
	h.Mux.Post("/ingest/{registrationID}", h.Ingest)

	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/whoami", h.WhoAmI)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.GetAllUsers)
				r.With(h.requireAdmin).Post("/", h.CreateUser)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.userInfo)
					r.Get("/", h.GetUser)
					r.With(h.requireAdmin).Patch("/", h.UpdateUser)
					r.With(h.requireAdmin).Post("/activate", h.ActivateUser)
					r.With(h.requireAdmin).Post("/deactivate", h.DeactivateUser)
				})
			})

			r.Route("/roles/admins", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.GetAdmins)
				r.Post("/{userID}", h.GrantAdmin)
				r.Delete("/{userID}", h.RevokeAdmin)
			})

			r.Route("/rotations", func(r chi.Router) {
				r.Get("/", h.GetAllRotations)
				r.With(h.requireAdmin).Post("/", h.CreateRotation)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.rotationInfo)
					r.Get("/", h.GetRotation)
					r.With(h.requireAdmin).Patch("/", h.UpdateRotation)
					r.With(h.requireAdmin).Delete("/", h.DeleteRotation)

					r.Get("/members", h.GetRotationMembers)
					r.With(h.requireAdmin).Post("/members", h.AddRotationMember)
					r.With(h.requireAdmin).Delete("/members/{memberID}", h.RemoveRotationMember)

					r.Get("/templates", h.GetRotationTemplates)
					r.With(h.requireAdmin).Post("/templates", h.CreateTemplate)

					r.With(h.requireAdmin).Post("/generate_periods", h.GeneratePeriods)
					r.With(h.requireAdmin).Post("/generate_periods_from_templates", h.GeneratePeriodsFromTemplates)
				})
			})

			r.Route("/templates/{id}", func(r chi.Router) {
				r.Use(h.templateInfo)
				r.Use(h.requireAdmin)
				r.Patch("/", h.UpdateTemplate)
				r.Delete("/", h.DeleteTemplate)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.GetPeriods)
				r.With(h.requireAdmin).Post("/", h.CreatePeriod)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(h.periodInfo)
					r.Get("/", h.GetPeriod)
					r.With(h.requireAdmin).Patch("/", h.UpdatePeriod)
					r.With(h.requireAdmin).Delete("/", h.DeletePeriod)

					r.Get("/assignments", h.GetPeriodAssignments)
					r.With(h.requireAdmin).Put("/assignments/{role}", h.SetPeriodAssignment)
					r.With(h.requireAdmin).Delete("/assignments/{role}", h.ClearPeriodAssignment)
				})
			})

			r.Route("/overrides", func(r chi.Router) {
				r.Get("/", h.GetAllOverrides)
				r.With(h.requireAdmin).Post("/", h.CreateOverride)
				r.With(h.requireAdmin).Delete("/{id}", h.DeleteOverride)
			})

			r.Get("/effective_schedule", h.GetEffectiveSchedule)

			r.Route("/incidents", func(r chi.Router) {
				r.Get("/", h.GetAllIncidents)
				r.Post("/", h.CreateIncident)
				r.Post("/{id}/resolve", h.ResolveIncident)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", h.GetSettings)
				r.With(h.requireAdmin).Put("/", h.UpdateSettings)
			})

			r.Route("/webhook_endpoints", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.GetAllWebhookEndpoints)
				r.Post("/", h.CreateWebhookEndpoint)
				r.Patch("/{id}", h.UpdateWebhookEndpoint)
				r.Delete("/{id}", h.DeleteWebhookEndpoint)
			})

			r.Route("/incoming_registrations", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.GetAllIncomingRegistrations)
				r.Post("/", h.CreateIncomingRegistration)
				r.Delete("/{id}", h.DeleteIncomingRegistration)
			})

			r.Route("/alert_rules", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.GetAllAlertRules)
				r.Post("/", h.CreateAlertRule)
				r.Patch("/{id}", h.UpdateAlertRule)
				r.Delete("/{id}", h.DeleteAlertRule)
			})

			r.With(h.requireAdmin).Post("/calendar/sync", h.CalendarSync)
		})
	})
}
