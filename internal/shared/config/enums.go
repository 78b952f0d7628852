//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package config

// AppEnv represents the application environment
// ENUM(local,production,development,testing)
type AppEnv string

// LogLevel represents the minimum logging severity
// ENUM(debug,info,warn,error)
type LogLevel string
