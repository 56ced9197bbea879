package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth     = RouteApiV1 + "/auth"
	RouteRegister = RouteAuth + "/register"
	RouteLogin    = RouteAuth + "/login"
	RouteLogout   = RouteAuth + "/logout"
	RouteMe       = RouteAuth + "/me"

	// files
	RouteFiles = RouteApiV1 + "/files"
	RouteFile  = RouteFiles + "/:file_id"

	// share
	RoutePublicFile    = RouteApiV1 + "/public/files/:file_id"
	RouteSharePage     = "/file/:file_id"
	RouteShareDownload = RouteSharePage + "/download"
	RouteBlobs         = "/blobs/*path"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
