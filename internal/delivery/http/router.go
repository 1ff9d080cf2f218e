package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth          *controllers.AuthController
	Community     *controllers.CommunityController
	Event         *controllers.EventController
	Registration  *controllers.RegistrationController
	Collaboration *controllers.CollaborationController
	Reminder      *controllers.ReminderController
	Notification  *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Communities
	mux.HandleFunc("POST /communities", auth(c.Community.CreateCommunity))
	mux.HandleFunc("GET /communities", auth(c.Community.ListMyCommunities))
	mux.HandleFunc("GET /communities/{idOrSlug}", c.Community.GetCommunity)
	mux.HandleFunc("POST /communities/{communityID}/members", auth(c.Community.AddMember))
	mux.HandleFunc("GET /communities/{communityID}/members", auth(c.Community.ListMembers))
	mux.HandleFunc("DELETE /communities/{communityID}/members/{userID}", auth(c.Community.RemoveMember))

	// Events
	mux.HandleFunc("POST /communities/{communityID}/events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /communities/{communityID}/events", c.Event.ListCommunityEvents)
	mux.HandleFunc("GET /events/{eventID}", c.Event.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(c.Event.PublishEvent))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(c.Event.CancelEvent))

	// Registrations. One route per flow; the anonymous flows are unauthenticated.
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(c.Registration.Register))
	mux.HandleFunc("GET /events/{eventID}/registrations", auth(c.Registration.ListRegistrations))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(c.Registration.Unregister))
	mux.HandleFunc("POST /events/{eventID}/anonymous-registrations", c.Registration.RegisterAnonymous)
	mux.HandleFunc("POST /events/{eventID}/anonymous-registrations/answers", c.Registration.RegisterAnonymousWithAnswers)
	mux.HandleFunc("POST /events/{eventID}/subscriptions", auth(c.Registration.Subscribe))
	mux.HandleFunc("POST /events/{eventID}/anonymous-subscriptions", c.Registration.SubscribeAnonymous)
	mux.HandleFunc("DELETE /events/{eventID}/anonymous-subscriptions", c.Registration.UnsubscribeAnonymous)
	mux.HandleFunc("GET /events/{eventID}/verify", c.Registration.VerifyEmail)
	mux.HandleFunc("PATCH /events/{eventID}/registrations/{registrationID}/approval", auth(c.Registration.SetApproval))

	// Collaborations
	mux.HandleFunc("POST /events/{eventID}/collaborations", auth(c.Collaboration.Invite))
	mux.HandleFunc("GET /events/{eventID}/collaborations", c.Collaboration.List)
	mux.HandleFunc("POST /collaborations/{collaborationID}/accept", auth(c.Collaboration.Accept))
	mux.HandleFunc("POST /collaborations/{collaborationID}/reject", auth(c.Collaboration.Reject))
	mux.HandleFunc("DELETE /collaborations/{collaborationID}", auth(c.Collaboration.Remove))

	// Internal endpoints, secret-authenticated in the controllers.
	mux.HandleFunc("POST /internal/reminders", c.Reminder.ProcessReminders)
	mux.HandleFunc("POST /internal/notifications", c.Notification.Process)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
