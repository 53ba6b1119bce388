/**
 * @description
 * This file sets up the HTTP router using the `chi` routing library. It
 * defines all the API routes and applies the shared middleware stack.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS middleware for the browser frontend.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/HGJ777/IdeaVault/internal/app"
	"github.com/HGJ777/IdeaVault/internal/config"
)

// NewRouter creates and configures a new HTTP router.
func NewRouter(
	cfg config.Config,
	ideas *app.IdeaService,
	billing *app.BillingService,
	messaging *app.MessagingService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	ideaHandler := NewIdeaHandler(ideas)
	billingHandler := NewBillingHandler(billing)
	messageHandler := NewMessageHandler(messaging)
	webhookHandler := NewWebhookHandler(billing, cfg.StripeWebhookSecret)

	// Public routes: the gallery is browsable without a session, and Stripe
	// authenticates the webhook with its signature, not a JWT.
	r.Get("/gallery", ideaHandler.Gallery)
	r.Method(http.MethodPost, "/stripe/webhook", webhookHandler)

	// Routes that require an authenticated Supabase session.
	r.Group(func(r chi.Router) {
		r.Use(SupabaseAuthMiddleware(cfg.SupabaseJWTSecret))

		r.Route("/ideas", func(r chi.Router) {
			r.Post("/", ideaHandler.CreateIdea)
			r.Get("/", ideaHandler.ListMine)
			r.Get("/stats", ideaHandler.Stats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ideaHandler.GetIdea)
				r.Put("/", ideaHandler.UpdateIdea)
				r.Delete("/", ideaHandler.DeleteIdea)
				r.Post("/views", ideaHandler.RecordView)
				r.Post("/contact", messageHandler.SubmitInquiry)

				r.Route("/updates", func(r chi.Router) {
					r.Post("/", ideaHandler.AddUpdate)
					r.Get("/", ideaHandler.ListUpdates)
					r.Put("/{updateID}", ideaHandler.EditUpdate)
					r.Delete("/{updateID}", ideaHandler.DeleteUpdate)
				})
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", messageHandler.Inbox)
			r.Get("/unread-count", messageHandler.UnreadMessageCount)
			r.Get("/{id}", messageHandler.GetMessage)
			r.Patch("/{id}/status", messageHandler.SetMessageStatus)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", messageHandler.Notifications)
			r.Get("/unread-count", messageHandler.UnreadNotificationCount)
			r.Post("/read-all", messageHandler.MarkAllNotificationsRead)
			r.Patch("/{id}/read", messageHandler.MarkNotificationRead)
			r.Delete("/{id}", messageHandler.DeleteNotification)
		})

		r.Route("/stripe", func(r chi.Router) {
			r.Post("/create-checkout", billingHandler.CreateCheckout)
			r.Post("/cancel-subscription", billingHandler.CancelSubscription)
			r.Get("/billing-summary", billingHandler.Summary)
			r.Get("/payment-methods", billingHandler.ListPaymentMethods)
			r.Post("/save-payment-method", billingHandler.SavePaymentMethod)
		})
	})

	return r
}
