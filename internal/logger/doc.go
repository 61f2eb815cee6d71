// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder that sends progress
//     notices to stdout and warnings/errors to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Info, InfoKV, ErrorKV, etc.).
//
// Services accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
