package build

// Version is overridden at link time: -ldflags "-X github.com/integrail/ollama-client/internal/build.Version=v1.2.3"
var Version = "dev"
