// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig is everything
// specific to DeskHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: deskhub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Admin bootstrap: when both are set, Startup seeds an admin credential
	// and user record if they do not exist yet.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// MaxAttachmentBytes bounds the decoded size of a single ticket
	// attachment. Attachments are stored inline in the ticket document, so
	// keep this well under the 16 MB document cap.
	MaxAttachmentBytes int64
}
