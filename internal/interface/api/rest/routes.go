package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth   = RouteApiV1 + "/auth"
	RouteLogin  = RouteAuth + "/login"
	RouteSignup = RouteAuth + "/signup"

	RouteUsers        = RouteApiV1 + "/users"
	RouteUser         = RouteUsers + "/:user_id"
	RouteUserFiles    = RouteUser + "/files"
	RouteUserFile     = RouteUserFiles + "/:file_id"
	RouteFileDownload = RouteUserFile + "/download"
	RouteFileInsight  = RouteUserFile + "/insight"
	RouteUserUsage    = RouteUser + "/usage"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
