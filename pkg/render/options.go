package render

import (
	"github.com/goliatone/go-formbind/pkg/formschema"
	"github.com/goliatone/go-formbind/pkg/messages"
	"github.com/goliatone/go-formbind/pkg/token"
)

// RenderOptions describe per-request data for one render.
type RenderOptions struct {
	// Form is the form object. Its fields are exported to the template under
	// their schema names and must not collide with Data or reserved names.
	Form any
	// Schema overrides the schema derived from Form, e.g. one built with
	// formschema.FromOpenAPI for map forms.
	Schema *formschema.Schema
	// Data holds values registered by the handler.
	Data map[string]any
	// Errors surfaces validation feedback to the errors variable. When nil,
	// ErrorPayload is mapped with messages.FromPayload.
	Errors       *messages.Messages
	ErrorPayload map[string][]string
	// Locale, Translator and OnMissing localize keyed messages before the
	// render reads them.
	Locale     string
	Translator messages.Translator
	OnMissing  messages.MissingTranslationHandler
	// Action names the action the form submits to; tokens are keyed by it.
	Action string
	Tokens token.Issuer
	// HiddenFields are appended to every form element of the template.
	HiddenFields map[string]string
	// AssetVersion is exported as assetVersion for cache busting links.
	AssetVersion string
}
