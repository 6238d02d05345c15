/*
Package config loads process configuration from environment variables using
envconfig.

Groups:
  - Engine: module root, declared runtime features, JS call stack limit
  - Bootstrap: worker stack size, remote service marker resource and retries
  - REPL: remote evaluation server address and rate limits
  - Logging: level and development mode

Unset variables fall back to the defaults returned by Default.
*/
package config
