package server

import (
	"net/http"

	"github.com/jrsteele09/billing-admin/internal/obs"
)

func (s *Server) initRoutes() {
	// Pages
	s.RegisterRouteHandler("GET "+RouteHome+"{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.APIMiddleware(s.PublicOnly)...))

	// Session
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware(s.PublicOnly)...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PATCH "+RouteAuthProfile, ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireSession)...))

	// Billing
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteDevices, ChainMiddleware(s.DevicesHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteCategories, ChainMiddleware(s.CategoriesHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteCategories, ChainMiddleware(s.CreateCategoryHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("PUT "+RouteCategory, ChainMiddleware(s.UpdateCategoryHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("DELETE "+RouteCategory, ChainMiddleware(s.DeleteCategoryHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("GET "+RouteTransactions, ChainMiddleware(s.TransactionsHandler(), s.APIMiddleware(s.RequireSession)...))

	// User management
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.AdminUsersListHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.AdminCreateUserHandler(), s.APIMiddleware(s.RequireSession)...))
	s.RegisterRouteHandler("PATCH "+RouteUserBlock, ChainMiddleware(s.AdminBlockUserHandler(), s.APIMiddleware(s.RequireSession)...))

	// Operations
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, obs.Handler())

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware))
}
