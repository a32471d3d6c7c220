package server

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	RouteHome  = "/"
	RouteLogin = "/login"

	// Session
	RouteAuthLogin   = "/auth/login"
	RouteAuthLogout  = "/auth/logout"
	RouteAuthSession = "/auth/session"
	RouteAuthProfile = "/auth/profile"

	// Billing resources
	RouteDevices      = "/api/devices"
	RouteCategories   = "/api/categories"
	RouteCategory     = "/api/categories/{id}"
	RouteTransactions = "/api/transactions"
	RouteUsers        = "/api/users"
	RouteUserBlock    = "/api/users/{id}/block"
	RouteDashboard    = "/api/dashboard"

	// Operations
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
