package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"skyspotter/internal/delivery/http/controllers"
	"skyspotter/internal/delivery/http/middleware"
	"skyspotter/internal/domain"
)

// Controllers bundles every controller the router mounts.
type Controllers struct {
	Auth        *controllers.AuthController
	User        *controllers.UserController
	Location    *controllers.LocationController
	Review      *controllers.ReviewController
	Comment     *controllers.CommentController
	Vote        *controllers.VoteController
	Report      *controllers.ReportController
	Follow      *controllers.FollowController
	Webhook     *controllers.WebhookController
	Suppression *controllers.SuppressionController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)
	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(middleware.AdminRole)(h))
	}
	// optionalAuth sets the user context when a valid token is present but
	// never rejects the request.
	optionalAuth := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(c.User.Me))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))
	mux.HandleFunc("GET /users/{id}/badges", c.User.ListBadges)
	mux.HandleFunc("POST /users/{id}/follow", auth(c.Follow.Follow))
	mux.HandleFunc("DELETE /users/{id}/follow", auth(c.Follow.Unfollow))
	mux.HandleFunc("GET /users/{id}/following", c.Follow.Following)
	mux.HandleFunc("GET /users/{id}/followers", c.Follow.Followers)

	// Locations
	mux.HandleFunc("POST /locations", auth(c.Location.Create))
	mux.HandleFunc("GET /locations", c.Location.List)
	mux.HandleFunc("GET /locations/{id}", c.Location.Get)
	mux.HandleFunc("PATCH /locations/{id}", auth(c.Location.Update))

	// Reviews
	mux.HandleFunc("POST /locations/{id}/reviews", auth(c.Review.Create))
	mux.HandleFunc("GET /locations/{id}/reviews", optionalAuth(c.Review.ListByLocation))
	mux.HandleFunc("PATCH /reviews/{id}", auth(c.Review.Update))
	mux.HandleFunc("DELETE /reviews/{id}", auth(c.Review.Delete))

	// Comments
	mux.HandleFunc("POST /reviews/{id}/comments", auth(c.Comment.Create))
	mux.HandleFunc("GET /reviews/{id}/comments", c.Comment.ListByReview)
	mux.HandleFunc("DELETE /comments/{id}", auth(c.Comment.Delete))

	// Votes
	mux.HandleFunc("POST /votes/{kind}/{id}", auth(c.Vote.Vote))
	mux.HandleFunc("GET /votes/{kind}/{id}", optionalAuth(c.Vote.GetCounts))

	// Reports
	mux.HandleFunc("POST /reports", auth(c.Report.File))
	mux.HandleFunc("GET /admin/reports", admin(c.Report.ListOpen))
	mux.HandleFunc("POST /admin/reports/{id}/resolve", admin(c.Report.Resolve))
	mux.HandleFunc("POST /admin/reports/{id}/dismiss", admin(c.Report.Dismiss))

	// Suppression list
	mux.HandleFunc("GET /admin/suppressions", admin(c.Suppression.List))
	mux.HandleFunc("POST /admin/suppressions", admin(c.Suppression.Suppress))
	mux.HandleFunc("DELETE /admin/suppressions/{email}", admin(c.Suppression.Unsuppress))

	// Provider webhooks; authenticated by SNS signature, not by bearer token.
	mux.HandleFunc("POST /webhooks/ses/bounce", c.Webhook.HandleNotification)
	mux.HandleFunc("POST /webhooks/ses/complaint", c.Webhook.HandleNotification)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
