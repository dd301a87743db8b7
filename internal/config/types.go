package config

// ProviderKind selects the market data source
type ProviderKind string

const (
	ProviderYahoo ProviderKind = "yahoo"
	ProviderFile  ProviderKind = "file"
)

// ValidProviderKinds lists the accepted provider.kind values
var ValidProviderKinds = []ProviderKind{ProviderYahoo, ProviderFile}

// MaxHistoryDays caps how far back stock history is requested
const MaxHistoryDays = 30

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
	"dpanic": true, "panic": true, "fatal": true,
}

var validPriorities = map[string]bool{
	"min": true, "low": true, "default": true, "high": true, "urgent": true,
}
