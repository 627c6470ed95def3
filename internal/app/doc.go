// Package app contains the core application logic: loading a document once
// and opening sessions on it to render one variant, render many variants
// concurrently, or relay a live session to a host. It is decoupled from any
// specific entrypoint like a CLI.
package app
