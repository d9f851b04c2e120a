package logging

// Log keys shared by the servers, the CLI and the Twitch client.
const (
	FieldService = "service"
	FieldSource  = "source"

	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"

	FieldGRPCMethod = "grpc_method"
	FieldGRPCCode   = "grpc_code"

	FieldPlatform   = "platform"
	FieldCallback   = "callback_name"
	FieldQuery      = "query"
	FieldOffset     = "offset"
	FieldLimit      = "limit"
	FieldTotal      = "total"
	FieldItems      = "items"
	FieldPage       = "page"
	FieldTotalPages = "total_pages"
	FieldDuration   = "duration"
	FieldAddr       = "addr"
)
