// Package template defines the seams between the vanilla host and the
// template engine that evaluates its expressions and renders error views.
package template
