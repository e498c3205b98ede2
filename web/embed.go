// Package web embeds the page templates and static assets into the binary.
package web

import "embed"

// TemplatesFS holds the page layouts and the table partial.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the HX-Trigger listeners.
//
//go:embed static/*
var StaticFS embed.FS
