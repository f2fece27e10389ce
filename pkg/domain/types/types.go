package types

// Version is the application version, overridden at build time via ldflags
var Version = "v0.0.0"

// AppName is the service identifier used in logs and health responses
const AppName = "metgate"
