// Package utils holds the ambient plumbing shared by repomerge commands: the
// Viper-backed ConfigurationLoader, the zap LoggerFactory, and the accessor for
// values carried on command contexts.
package utils
