package types

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	// User prompt, sent to the model unmodified. Must not be blank.
	// example: Why is the sky blue?
	Message string `json:"message" example:"Why is the sky blue?"`
}

// ChatResponse is a successful answer from POST /chat.
type ChatResponse struct {
	// Model answer with reasoning blocks removed.
	// example: Rayleigh scattering favors short wavelengths.
	Message string `json:"message" example:"Rayleigh scattering favors short wavelengths."`
	// Display name of the assistant.
	// example: Chompers
	Model string `json:"model" example:"Chompers"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Empty message
	Error string `json:"error" example:"Empty message"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InstalledModel is one entry of the daemon's model catalog.
type InstalledModel struct {
	// Model name as listed by the daemon.
	// example: deepseek-r1:7b
	Name string `json:"name" example:"deepseek-r1:7b"`
	// Size on disk in bytes, when reported.
	// example: 4683075271
	Size int64 `json:"size,omitempty" example:"4683075271"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Startup phase of the daemon supervisor.
	// example: ready
	Phase string `json:"phase" example:"ready"`
	// Whether this process started the daemon and will stop it on exit.
	// example: true
	Owned bool `json:"owned" example:"true"`
	// PID of the daemon when owned.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Required model identifier.
	// example: deepseek-r1:7b
	Model string `json:"model" example:"deepseek-r1:7b"`
	// Display name returned with answers.
	// example: Chompers
	Label string `json:"label" example:"Chompers"`
	// Daemon control API endpoint.
	// example: http://127.0.0.1:11434
	DaemonURL string `json:"daemon_url" example:"http://127.0.0.1:11434"`
	// Models currently installed in the daemon.
	Installed []InstalledModel `json:"installed"`
	// Error from the last catalog query or setup failure.
	Error string `json:"error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
