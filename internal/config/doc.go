// Package config defines the format-agnostic document model handed to the
// engine: a static tree of typed components whose attributes are unevaluated
// expressions. Loaders for concrete syntaxes (see internal/hcldoc) translate
// into this model.
package config
